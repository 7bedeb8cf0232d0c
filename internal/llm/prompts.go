package llm

import (
	"fmt"
	"strings"
)

const summarizeSystemPrompt = "You are a concise workplace culture analyst."

const summarizePromptTemplate = `Summarise the following employee feedback into 1-2 bullet points.
Focus on concrete issues, situations, or positive aspects. Avoid generic phrases.

Feedback:
"""%s"""

Output format:
- bullet point 1
- bullet point 2 (optional)
`

const insightSystemPrompt = "You are a senior workplace culture analyst. " +
	"Always respond with valid JSON only. Be concrete and avoid meta-commentary."

const insightPromptTemplate = `You are analyzing %s employee feedback for the theme "%s" (theme type: %s).

There are approximately %d %s comments in total.
They have been clustered into several sub-topics. Each sub-topic includes rough size estimates, top keywords, and example bullet-point summaries:

%s

Requirements:
1. Summary:
   - Directly state specific examples of %s patterns.
   - Do NOT use meta phrases like "the comments reflect" or "people say".
   - Write 2-3 concise sentences with concrete, stakeholder-friendly descriptions.
   - Include specific numbers, timeframes, or concrete examples when mentioned in the clusters.
2. Recommendations:
   - Provide 1-3 actionable recommendations that are SPECIFIC and MEASURABLE.
   - Each recommendation should address a concrete issue identified in the clusters and include a target outcome or metric when possible.
   - Avoid vague phrases like "improve", "enhance", "better" without specifics.
   - Good examples: "Implement 30-day hiring timeline with weekly status updates", "Establish quarterly performance reviews with clear promotion criteria"
   - Bad examples: "Improve communication", "Better training", "More support"

Output JSON in this exact format:
{
  "summary": "Direct, concrete description of the main %s patterns",
  "recommendations": ["short phrase 1", "short phrase 2"]
}`

const sqlSystemPrompt = "You are a PostgreSQL expert for an employee feedback database. " +
	"Answer with exactly one SELECT statement inside a ```sql code block."

const sqlPromptTemplate = `Write a PostgreSQL SELECT query that answers the question below.

Schema:
  comments(id UUID, content TEXT, language TEXT, source TEXT,
           base_theme TEXT, sub_theme TEXT, sentiment TEXT,
           likes BIGINT, date DATE, created_at TIMESTAMPTZ)
  theme_insights(theme_type TEXT, theme_name TEXT,
                 positive_summary TEXT, negative_summary TEXT,
                 positive_recommendations JSONB, negative_recommendations JSONB,
                 model TEXT, created_at TIMESTAMPTZ, updated_at TIMESTAMPTZ)

Notes:
- sentiment is one of 'positive', 'negative', 'neutral'; treat NULL as 'neutral'.
- base_theme holds the broad topic, sub_theme the finer one; both may be NULL.
- Exclude rows where base_theme IN ('others', 'stock_market') unless the question asks for them.
- Use single quotes for string literals. Never modify data.
- Limit open-ended result sets to a reasonable number of rows.

Question: %s

Respond with a short explanation followed by the query in a ` + "```sql" + ` block.`

const analysisSystemPrompt = "You are a workplace culture analyst. " +
	"Explain query results in plain language for a non-technical reader."

const analysisPromptTemplate = `A user asked: %s

This SQL query was executed:
%s

It returned %d rows. A sample of the rows as JSON:
%s

Write 2-4 sentences answering the user's question from these rows.
Mention concrete numbers. Do not describe the SQL itself.`

func buildSQLPrompt(question string) string {
	return fmt.Sprintf(sqlPromptTemplate, truncate(question, 1000))
}

func buildAnalysisPrompt(req AnalysisRequest) string {
	return fmt.Sprintf(analysisPromptTemplate,
		truncate(req.Question, 1000), req.SQL, req.RowCount, truncate(req.RowsJSON, 8000))
}

func buildSummarizePrompt(text string) string {
	return fmt.Sprintf(summarizePromptTemplate, truncate(text, 1000))
}

func buildInsightPrompt(req InsightRequest) string {
	return fmt.Sprintf(insightPromptTemplate,
		req.SentimentLabel, req.ThemeName, req.ThemeType,
		req.TotalComments, req.SentimentLabel,
		buildClusterBlock(req.Clusters),
		req.SentimentLabel, req.SentimentLabel)
}

// buildClusterBlock renders the cluster structure for the insight prompt:
// size, keywords and a few example summaries per sub-topic.
func buildClusterBlock(clusters []ClusterDigest) string {
	var sb strings.Builder

	for i, c := range clusters {
		fmt.Fprintf(&sb, "Sub-topic %d (approx. %d comments)\n", i, c.Size)

		keywords := "N/A"
		if len(c.Keywords) > 0 {
			keywords = strings.Join(c.Keywords, ", ")
		}

		fmt.Fprintf(&sb, "  Keywords: %s\n", keywords)
		sb.WriteString("  Example summaries:\n")

		examples := c.Examples
		if len(examples) > 3 {
			examples = examples[:3]
		}

		for _, ex := range examples {
			sb.WriteString("    " + ex + "\n")
		}

		sb.WriteString("\n")
	}

	return sb.String()
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}

	return s[:maxLen]
}
