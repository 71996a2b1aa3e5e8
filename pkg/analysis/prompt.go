package analysis

import (
	"fmt"
	"strings"

	"beautyfood-backend/domain"
)

const systemPrompt = `You are a nutritionist who rates meals for their effect on beauty: skin, aging, detox, circulation, hair and nails.
Reply with a single JSON object and nothing else. No markdown, no comments.`

const responseContract = `{
  "detected_foods": [{"name": string, "category": "protein"|"carb"|"vegetable"|"fruit"|"fat"|"other", "estimated_amount": string, "confidence": number 0-1}],
  "nutrition_analysis": {
    "calories": number, "protein": number, "carbohydrates": number, "fat": number, "fiber": number,
    "vitamins": {"vitamin_c": number, "vitamin_e": number, "vitamin_a": number, "vitamin_b_complex": number},
    "minerals": {"iron": number, "zinc": number, "calcium": number, "magnesium": number}
  },
  "beauty_score": {"skin_care": 0-100, "anti_aging": 0-100, "detox": 0-100, "circulation": 0-100, "hair_nails": 0-100, "overall": 0-100},
  "immediate_advice": string,
  "next_meal_advice": string,
  "beauty_benefits": [string]
}`

var levelGuidance = map[domain.ExperienceLevel]string{
	domain.Beginner:     "The user is new to nutrition. Keep advice short, friendly and free of jargon.",
	domain.Intermediate: "The user knows the basics. Mention the key nutrients behind each recommendation.",
	domain.Advanced:     "The user is experienced. Be specific about nutrient amounts, absorption and food pairings.",
}

// BuildPrompt renders the user prompt for one analysis. Experience level only
// changes the tone of the advice, never the scoring rules.
func BuildPrompt(profile domain.UserProfile) string {
	focus := make([]string, 0, len(profile.BeautyFocus))
	for _, c := range profile.BeautyFocus {
		focus = append(focus, c.Label())
	}

	guidance, ok := levelGuidance[profile.ExperienceLevel]
	if !ok {
		guidance = levelGuidance[domain.Beginner]
	}

	var sb strings.Builder
	sb.WriteString("Analyze the meal in this photo.\n")
	fmt.Fprintf(&sb, "The user's beauty focus: %s. Tailor the advice and benefits to these goals.\n", strings.Join(focus, ", "))
	sb.WriteString(guidance)
	sb.WriteString("\nEstimate nutrition for the visible portion. Vitamin and mineral values are indices from 0 to 100 of the daily need.\n")
	sb.WriteString("Return exactly this JSON shape:\n")
	sb.WriteString(responseContract)
	return sb.String()
}
