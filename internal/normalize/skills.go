package normalize

import "strings"

// skillVocabulary is the fixed, ordered list scanned against listing text.
// Order matters: extraction preserves vocabulary order so results stay
// deterministic for identical input.
var skillVocabulary = []string{
	"javascript", "typescript", "python", "java", "golang", "go",
	"c++", "c#", "ruby", "php", "swift", "kotlin", "rust", "scala",
	"react", "angular", "vue", "next.js", "node.js", "express",
	"django", "flask", "spring", "rails", ".net",
	"sql", "postgresql", "mysql", "mongodb", "redis", "elasticsearch",
	"kafka", "rabbitmq", "graphql", "rest api", "grpc",
	"aws", "azure", "gcp", "docker", "kubernetes", "terraform",
	"jenkins", "ci/cd", "git", "linux",
	"machine learning", "deep learning", "nlp", "tensorflow", "pytorch",
	"data analysis", "pandas", "spark", "hadoop",
	"html", "css", "sass", "tailwind",
	"figma", "photoshop", "illustrator",
	"agile", "scrum", "jira",
	"excel", "salesforce", "sap",
	"seo", "google analytics", "content marketing",
	"project management", "communication", "leadership",
}

const maxSkills = 12

// ExtractSkills scans title and description against the vocabulary and
// returns up to maxSkills distinct matches in vocabulary order.
func ExtractSkills(title, description string) []string {
	text := strings.ToLower(title + " " + description)

	var skills []string
	seen := make(map[string]bool)
	for _, skill := range skillVocabulary {
		if seen[skill] || !strings.Contains(text, skill) {
			continue
		}
		// "go" and "java" are substrings of longer entries already matched
		if skill == "go" && seen["golang"] {
			continue
		}
		if skill == "java" && strings.Contains(text, "javascript") && !strings.Contains(strings.ReplaceAll(text, "javascript", ""), "java") {
			continue
		}
		seen[skill] = true
		skills = append(skills, skill)
		if len(skills) >= maxSkills {
			break
		}
	}
	return skills
}
