// Package chat holds the Claude-backed conversational advisor and the bullet
// point generator used by the enrichment pipeline. Both talk to the Anthropic
// API through pkg/anthropic and degrade to canned output on failure so that a
// flaky upstream never surfaces as an error to students.
package chat

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/hacktheburgh/coursefinder/internal/catalog"
)

// advisorSystemPrompt frames the assistant as an Edinburgh course advisor.
// The ranked course block is appended below it per request.
const advisorSystemPrompt = `You are a friendly and knowledgeable course advisor for the University of Edinburgh. You help students discover courses from the Degree Regulations and Programmes of Study (DRPS) catalogue that match their interests.

Rules:
- Recommend ONLY from the matched courses listed below. Never invent course codes or names.
- Mention each recommended course by its code and full name
- Briefly explain why each recommendation fits what the student asked for
- If the matched course list is empty, say so honestly and suggest the student rephrase or broaden their interests
- Keep replies conversational and under 200 words
- Do not discuss topics unrelated to University of Edinburgh courses`

// noCoursesBlock replaces the course block when ranking found nothing.
const noCoursesBlock = "No catalogue courses matched the student's interests."

// bulletSystemPrompt mirrors the instruction used since the first enrichment
// run; keeping it stable keeps regenerated bullets consistent with the
// existing catalogue.
const bulletSystemPrompt = "You are a helpful academic assistant that creates concise bullet points about university courses."

func bulletUserPrompt(text string) string {
	return fmt.Sprintf(`Generate EXACTLY 3 bullet points that summarize the key aspects of this course. Return ONLY the 3 bullet points without any additional text or numbering. Each bullet point should be prefixed with '• ' and be on a new line.

Course information: %s`, text)
}

// formatCourses serialises ranked matches into the structured block the
// advisor system prompt refers to.
func formatCourses(matches []catalog.ScoredCourse) string {
	if len(matches) == 0 {
		return noCoursesBlock
	}

	var sb strings.Builder
	sb.WriteString("Matched courses, best first:\n")
	for i, m := range matches {
		c := m.Course
		sb.WriteString(fmt.Sprintf("\n%d. %s — %s\n", i+1, c.Code, c.Name))
		if c.School != "" {
			sb.WriteString(fmt.Sprintf("   School: %s\n", c.School))
		}
		if c.CreditLevel != "" {
			sb.WriteString(fmt.Sprintf("   Level: %s\n", c.CreditLevel))
		}
		if c.Credits != "" {
			sb.WriteString(fmt.Sprintf("   Credits: %s\n", c.Credits))
		}
		if c.Period != "" {
			sb.WriteString(fmt.Sprintf("   Period: %s\n", c.Period))
		}
		if summary := courseSummary(c.Summary, c.Description); summary != "" {
			sb.WriteString(fmt.Sprintf("   About: %s\n", summary))
		}
	}
	return sb.String()
}

// summaryLimit caps per-course prose in the prompt so seven matches stay well
// inside the context budget.
const summaryLimit = 400

func courseSummary(summary, description string) string {
	text := strings.TrimSpace(summary)
	if text == "" {
		text = strings.TrimSpace(description)
	}
	if len(text) > summaryLimit {
		cut := strings.LastIndex(text[:summaryLimit], " ")
		if cut <= 0 {
			cut = summaryLimit
		}
		text = text[:cut] + "…"
	}
	return text
}

var (
	yearDigitPattern   = regexp.MustCompile(`(?i)\byear\s*([1-5])\b`)
	yearOrdinalPattern = regexp.MustCompile(`(?i)\b([1-5])(?:st|nd|rd|th)[\s-]*year\b`)
)

var yearWords = []struct {
	word string
	year int
}{
	{"first", 1},
	{"second", 2},
	{"third", 3},
	{"fourth", 4},
	{"fifth", 5},
	{"final", 4},
}

// sniffYear pulls an academic year out of a free-text message ("year 2",
// "2nd year", "third year"). Returns 0 when the message names none.
func sniffYear(message string) int {
	if m := yearDigitPattern.FindStringSubmatch(message); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n
	}
	if m := yearOrdinalPattern.FindStringSubmatch(message); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n
	}
	lower := strings.ToLower(message)
	for _, w := range yearWords {
		if strings.Contains(lower, w.word+" year") || strings.Contains(lower, w.word+"-year") {
			return w.year
		}
	}
	return 0
}
