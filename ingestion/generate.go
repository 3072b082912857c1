package ingestion

import (
	"fmt"
	"math/rand/v2"

	"github.com/poiesic/tipindex/core"
)

var generatorCategories = []string{
	"nutrition", "hydration", "fitness", "stress", "immunity",
	"maternal", "child", "digestion", "diabetes", "heart",
	"skin_care", "eye_health", "hair_care", "sleep", "weight_management",
	"elderly_care", "first_aid", "food_safety", "cooking_tips", "budget_nutrition",
	"seasonal_care", "travel_health", "oral_health", "mental_health", "hygiene",
}

var generatorSituations = map[string][]string{
	"nutrition":         {"poor diet", "malnutrition", "vitamin deficiency", "energy levels", "balanced meals"},
	"hydration":         {"dehydration", "hot weather", "exercise", "illness", "daily intake"},
	"fitness":           {"inactive", "weight loss", "muscle gain", "flexibility", "endurance"},
	"stress":            {"anxiety", "work pressure", "mental fatigue", "burnout", "relaxation"},
	"immunity":          {"frequent illness", "cold season", "weak immune system", "recovery", "prevention"},
	"maternal":          {"pregnancy", "postpartum", "breastfeeding", "nutrition needs", "energy"},
	"child":             {"growth", "development", "appetite", "healthy habits", "immunity"},
	"digestion":         {"constipation", "bloating", "indigestion", "gut health", "regularity"},
	"diabetes":          {"blood sugar", "weight management", "diet control", "monitoring", "prevention"},
	"heart":             {"blood pressure", "cholesterol", "heart health", "circulation", "prevention"},
	"skin_care":         {"dry skin", "acne", "sun protection", "aging", "hydration"},
	"eye_health":        {"eye strain", "vision", "dry eyes", "protection", "nutrition"},
	"hair_care":         {"hair loss", "dry hair", "growth", "scalp health", "shine"},
	"sleep":             {"insomnia", "quality", "routine", "restoration", "duration"},
	"weight_management": {"obesity", "weight loss", "maintenance", "metabolism", "portion control"},
	"elderly_care":      {"aging", "mobility", "nutrition", "hydration", "cognitive health"},
	"first_aid":         {"injuries", "burns", "cuts", "sprains", "emergency"},
	"food_safety":       {"storage", "preparation", "cooking", "hygiene", "preservation"},
	"cooking_tips":      {"healthy methods", "flavor", "nutrient retention", "time saving", "equipment"},
	"budget_nutrition":  {"affordable", "seasonal", "bulk buying", "planning", "waste reduction"},
	"seasonal_care":     {"weather changes", "allergies", "immunity", "clothing", "activity"},
	"travel_health":     {"motion sickness", "hydration", "food safety", "rest", "preparation"},
	"oral_health":       {"dental hygiene", "gum health", "breath", "sensitivity", "prevention"},
	"mental_health":     {"depression", "anxiety", "stress", "mindfulness", "social connection"},
	"hygiene":           {"personal", "environmental", "food", "hand washing", "prevention"},
}

var generatorFoods = []string{
	"fruits", "vegetables", "whole grains", "lean protein", "healthy fats",
	"leafy greens", "berries", "nuts", "seeds", "legumes",
	"dairy", "fish", "eggs", "poultry", "herbs",
	"spices", "root vegetables", "citrus fruits", "tropical fruits", "cruciferous vegetables",
}

var generatorBenefits = []string{
	"health", "energy", "immunity", "digestion", "skin health",
	"mental clarity", "weight management", "heart health", "bone strength", "muscle function",
	"sleep quality", "stress reduction", "hydration", "detoxification", "metabolism",
}

var generatorSeverities = []string{"mild", "moderate", "preventive"}

var generatorTexts = map[string]string{
	"hydration":         "Drink water throughout the day, especially before and after physical activity.",
	"immunity":          "Boost your immunity with vitamin-rich foods like citrus fruits and leafy greens.",
	"maternal":          "During pregnancy, ensure adequate intake of iron, calcium, and folic acid.",
	"child":             "Encourage children to eat colorful fruits and vegetables for balanced nutrition.",
	"digestion":         "Include fiber-rich foods and drink plenty of water for healthy digestion.",
	"diabetes":          "Monitor carbohydrate intake and choose complex carbs over simple sugars.",
	"heart":             "Limit saturated fats and include heart-healthy foods like fish and nuts.",
	"skin_care":         "Protect your skin from sun damage and stay hydrated for healthy skin.",
	"eye_health":        "Give your eyes regular breaks from screens and eat eye-healthy foods.",
	"hair_care":         "Nourish your hair with protein-rich foods and gentle hair care practices.",
	"sleep":             "Maintain consistent sleep schedule and create relaxing bedtime routine.",
	"weight_management": "Combine balanced diet with regular exercise for healthy weight.",
	"elderly_care":      "Ensure adequate protein intake and regular gentle exercise for seniors.",
	"first_aid":         "Keep basic first aid supplies at home and know how to use them.",
	"food_safety":       "Practice proper food handling and storage to prevent foodborne illness.",
	"cooking_tips":      "Use healthy cooking methods like steaming and baking instead of frying.",
	"budget_nutrition":  "Buy seasonal produce and plan meals to save money on healthy food.",
	"seasonal_care":     "Adjust your diet and activities according to seasonal changes.",
	"travel_health":     "Stay hydrated and practice good hygiene while traveling.",
	"oral_health":       "Brush twice daily, floss regularly, and visit dentist for checkups.",
	"mental_health":     "Take time for self-care and maintain social connections.",
	"hygiene":           "Practice good personal hygiene and keep your environment clean.",
}

// Generate builds n synthetic raw tips with ids 1..n. The same seed always
// yields the same corpus.
func Generate(n int, seed int64) []core.RawTip {
	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))

	tips := make([]core.RawTip, 0, max(n, 0))
	for id := 1; id <= n; id++ {
		category := pick(rng, generatorCategories)
		tips = append(tips, core.RawTip{
			"id":        id,
			"category":  category,
			"situation": pick(rng, generatorSituations[category]),
			"severity":  pick(rng, generatorSeverities),
			"text":      generatedText(rng, category),
		})
	}
	return tips
}

func generatedText(rng *rand.Rand, category string) string {
	switch category {
	case "nutrition":
		return fmt.Sprintf("Eat %s regularly for better %s.", pick(rng, generatorFoods), pick(rng, generatorBenefits))
	case "fitness":
		return fmt.Sprintf("Include %d minutes of exercise in your daily routine.", rng.IntN(30)+10)
	case "stress":
		return fmt.Sprintf("Practice deep breathing for %d minutes when feeling stressed.", rng.IntN(15)+5)
	default:
		return generatorTexts[category]
	}
}

func pick(rng *rand.Rand, items []string) string {
	return items[rng.IntN(len(items))]
}
