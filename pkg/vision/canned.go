package vision

import (
	"strings"

	"beautyfood-backend/domain"
)

type cannedReply struct {
	object  string
	message string
}

// Checked in order; the first object contained in the detected label wins.
var cannedReplies = []cannedReply{
	{"unclear", "We could not quite tell what that was. Try a clearer photo of your meal in good light."},
	{"selfie", "Beautiful selfie! Your skin will thank you even more if you show us your meal."},
	{"person", "Looking fabulous! Now show us what you are eating so we can help you glow from the inside."},
	{"cat", "That cat looks adorable, but we only score meals. Feed your skin, not your pet photos!"},
	{"dog", "Good boy detected. Sadly dogs have zero vitamin C for your glow. Try snapping your plate instead."},
	{"keyboard", "Keyboards are crunchy but not nutritious. Point the camera at your food!"},
	{"phone", "Screens do not count as a meal. Let us see the real food!"},
	{"plant", "Almost! That plant is green, but is it on your plate? Snap your meal instead."},
	{"car", "Fast car, slow digestion? We need a meal photo to work our magic."},
}

const defaultCanned = "Hmm, that does not look like food. Snap a photo of your meal to get your beauty score!"

// CannedResponse returns the light-hearted reply shown for non-food images.
func CannedResponse(res domain.ClassificationResult) string {
	object := strings.ToLower(strings.TrimSpace(res.DetectedObject))
	for _, r := range cannedReplies {
		if object == r.object {
			return r.message
		}
	}
	for _, r := range cannedReplies {
		if strings.Contains(object, r.object) {
			return r.message
		}
	}
	return defaultCanned
}
