package assetgen

import (
	"fmt"
	"strings"

	"github.com/aayush-wiz/doodle-ai-app/internal/domain"
)

// speakerPlacement keeps recurring characters on consistent sides of the
// frame so cuts between turns read like a conversation.
var speakerPlacement = map[string]string{
	"Homer": "on the left",
	"Lisa":  "on the right",
}

// dialoguePrompt builds the image prompt for one dialogue turn: the speaking
// character with their action and speech bubble, next to the turn's doodle.
func dialoguePrompt(turn domain.Turn) string {
	bubble := strings.NewReplacer(`"`, "", "'", "").Replace(turn.BubbleText)
	action := turn.CharacterAction
	if action == "" {
		action = "explaining"
	}

	var subject string
	if place, ok := speakerPlacement[turn.Speaker]; ok {
		subject = fmt.Sprintf("%s Simpson %s %s, speaking with a comic book speech bubble containing: '%s'.",
			turn.Speaker, action, place, bubble)
	} else {
		subject = fmt.Sprintf("A Simpsons-style narrator %s, speaking with a speech bubble containing: '%s'.",
			action, bubble)
	}

	visual := turn.VisualDesc
	if visual == "" {
		visual = "a simple explanatory diagram"
	}
	return fmt.Sprintf("%s Next to them is a simple line drawing of %s. The background must be pure white.", subject, visual)
}
