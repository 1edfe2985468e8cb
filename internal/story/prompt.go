package story

import (
	"fmt"

	"github.com/coastal7-sdlc/user-story-agent/common/llm"
)

const SystemPrompt = `You are a professional software analyst who creates clear, actionable user stories with acceptance criteria for agile development. You analyze project requirements and determine the appropriate number of user stories based on complexity and scope. For simple projects, generate fewer stories. For complex projects, generate more comprehensive stories. Always respond with valid JSON arrays containing story and acceptance_criteria fields.`

const userPromptTemplate = `Given the following project requirements, generate user stories with acceptance criteria for agile development.

Requirements:
%s

Please analyze the requirements and generate an appropriate number of user stories based on the complexity and scope of the project.
- For simple requirements: Generate 2-4 user stories
- For medium complexity: Generate 4-6 user stories
- For complex requirements: Generate 6-10 user stories
- For very complex projects: Generate 8-15 user stories

The number should be proportional to the scope and complexity of the requirements provided.

Please output ONLY a JSON array of objects. Each object should contain:
- "story": The user story in format "As a <role>, I want <feature> so that <reason>."
- "acceptance_criteria": An array of acceptance criteria in "Given... When... Then..." format

Example format:
[
    {
        "story": "As a user, I want to register so that I can have a personal account.",
        "acceptance_criteria": [
            "Given I am on the registration page, When I fill in valid email and password, Then I should be able to create an account",
            "Given I am on the registration page, When I submit with invalid email format, Then I should see an error message",
            "Given I am on the registration page, When I submit with weak password, Then I should see password strength requirements"
        ]
    }
]

Generate the appropriate number of user stories based on the complexity of the requirements provided, with 3-4 acceptance criteria each.`

// structuredInstruction replaces the bare-array instruction when the provider
// enforces a JSON schema, since strict schemas must have an object at the root.
const structuredInstruction = `

Respond with a JSON object whose "user_stories" field holds the array described above.`

// BuildPrompt embeds requirements in the user prompt.
func BuildPrompt(requirements string, structured bool) string {
	prompt := fmt.Sprintf(userPromptTemplate, requirements)
	if structured {
		prompt += structuredInstruction
	}
	return prompt
}

// StoryPayload is the structured-output shape requested from the provider.
type StoryPayload struct {
	UserStories []StoryItem `json:"user_stories" jsonschema_description:"Generated user stories"`
}

type StoryItem struct {
	Story              string   `json:"story" jsonschema_description:"As a <role>, I want <feature> so that <reason>."`
	AcceptanceCriteria []string `json:"acceptance_criteria" jsonschema_description:"Acceptance criteria in Given... When... Then... format"`
}

const ResponseSchemaName = "user_stories"

// ResponseSchema is the JSON schema for StoryPayload.
func ResponseSchema() any {
	return llm.GenerateSchema[StoryPayload]()
}
