package story_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/coastal7-sdlc/user-story-agent/internal/model"
	"github.com/coastal7-sdlc/user-story-agent/internal/story"
)

var _ = Describe("ParseFallback", func() {
	It("returns the single default story when nothing matches", func() {
		stories := story.ParseFallback("Sorry, I cannot help with that.\nGiven nothing here")
		Expect(stories).To(HaveLen(1))
		Expect(stories[0].Story).To(Equal(story.DefaultStory))
		Expect(stories[0].AcceptanceCriteria).To(Equal([]string{
			"Given the requirements are clear, When implemented correctly, Then the system should meet business needs",
			"Given the system is implemented, When tested thoroughly, Then it should work as expected",
		}))
	})

	It("returns the default story for empty input", func() {
		Expect(story.ParseFallback("")).To(HaveLen(1))
	})

	It("pairs a story with a verbatim criterion line", func() {
		stories := story.ParseFallback("As a user, I want X so that Y.\nGiven A, When B, Then C")
		Expect(stories).To(Equal([]model.Story{{
			Story:              "As a user, I want X so that Y.",
			AcceptanceCriteria: []string{"Given A, When B, Then C"},
		}}))
	})

	It("closes the open story when the next one starts", func() {
		text := `Here are your stories:
  As a shopper, I want a cart so that I can buy things.
  Given an empty cart, When I add an item, Then the cart has one item

As an admin, I want reports
As a admin, I need exports so that I can audit.
Given data, When I export, Then I get a file`
		stories := story.ParseFallback(text)
		Expect(stories).To(HaveLen(2))
		Expect(stories[0].Story).To(Equal("As a shopper, I want a cart so that I can buy things."))
		Expect(stories[0].AcceptanceCriteria).To(HaveLen(1))
		Expect(stories[1].Story).To(Equal("As a admin, I need exports so that I can audit."))
		Expect(stories[1].AcceptanceCriteria).To(Equal([]string{"Given data, When I export, Then I get a file"}))
	})

	It("substitutes the placeholder for stories without criteria", func() {
		stories := story.ParseFallback("As a user, I want to log in\nAs a user, I want to log out")
		Expect(stories).To(HaveLen(2))
		for _, s := range stories {
			Expect(s.AcceptanceCriteria).To(Equal([]string{model.PlaceholderCriterion(s.Story)}))
		}
	})

	It("strips one numbering marker from numbered criteria", func() {
		text := "As a user, I want search\n1. Given a query, When I search, Then I see results\n2) When nothing matches, Then I see an empty state\n3. Note: Given is a keyword"
		stories := story.ParseFallback(text)
		Expect(stories).To(HaveLen(1))
		Expect(stories[0].AcceptanceCriteria).To(Equal([]string{
			"Given a query, When I search, Then I see results",
			"When nothing matches, Then I see an empty state",
		}))
	})

	It("drops criteria seen before any story", func() {
		stories := story.ParseFallback("Given A, When B, Then C\nAs a user, I want X")
		Expect(stories).To(HaveLen(1))
		Expect(stories[0].AcceptanceCriteria).To(Equal([]string{model.PlaceholderCriterion("As a user, I want X")}))
	})

	DescribeTable("classifies numbered criteria by their first three characters",
		func(line string, want bool) {
			Expect(story.IsNumberedCriterion(line)).To(Equal(want))
		},
		Entry("ascii marker", "1. Given a, When b, Then c", true),
		Entry("digit after two multi-byte characters", "éé1 Given a, When b, Then c", true),
		Entry("digit after three multi-byte characters", "ééé1 Given a", false),
		Entry("no clause keyword", "1. Check the output", false),
	)

	It("ignores Given lines missing When or Then", func() {
		stories := story.ParseFallback("As a user, I want X\nGiven A, Then C")
		Expect(stories[0].AcceptanceCriteria).To(Equal([]string{model.PlaceholderCriterion("As a user, I want X")}))
	})
})
