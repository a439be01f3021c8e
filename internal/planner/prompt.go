package planner

import (
	"fmt"
	"strings"

	"github.com/aayush-wiz/doodle-ai-app/internal/domain"
)

// langNames maps ISO 639-1 codes to the display names used inside prompts.
// Unknown codes fall through to the raw code; models cope fine with that.
var langNames = map[string]string{
	"hi": "Hindi",
	"es": "Spanish",
	"de": "German",
	"fr": "French",
	"ja": "Japanese",
	"zh": "Chinese",
	"ko": "Korean",
	"pt": "Portuguese",
	"it": "Italian",
	"ar": "Arabic",
	"ru": "Russian",
}

func languageInstruction(lang string) string {
	if domain.IsEnglish(lang) {
		return ""
	}
	name := langNames[strings.ToLower(lang)]
	if name == "" {
		name = lang
	}
	return fmt.Sprintf(`
LANGUAGE: Write all narration/audio text primarily in %s, but keep key
technical terms and jargon in English so complex concepts stay recognizable.
Keep "image_prompt" and "visual_desc" in English (they feed image generation).
`, name)
}

func partsPrompt(topic, lang string) string {
	return fmt.Sprintf(`You are a whiteboard explainer video script expert.
Create a video script for: %q.
%s
STRUCTURE:
1. Beat 1 introduces the topic (title visual, welcoming narration).
2. Middle beats break the topic into logical steps or concepts.
3. The final beat recaps the key takeaways.

Each beat has a "parts" array of 1 to 3 visual sections:
- 1 part for a single unified concept or diagram.
- 2 parts for comparisons, before/after, cause/effect.
- 3 parts for step-by-step flows and sequences.

Each part needs:
- "position": 0=left, 1=center, 2=right.
- "image_prompt": what to draw for this section, on a pure white background.
- "narration_script": 1-2 sentences explaining this section.
- "visual_desc": a concise description of what is drawn.

Respond with JSON only, in exactly this shape:
{
  "topic": %q,
  "beats": [
    {
      "beat_id": 1,
      "parts": [
        {"position": 0, "image_prompt": "...", "narration_script": "...", "visual_desc": "..."}
      ]
    }
  ]
}`, topic, languageInstruction(lang), topic)
}

func dialoguePrompt(topic, lang string, speakers []string) string {
	roster := strings.Join(speakers, " and ")
	return fmt.Sprintf(`You are a whiteboard video script expert writing a comic dialogue.
Create a video script for: %q as a conversation between %s.
%s
TIMING: each doodle takes about 5 seconds to draw, so pad the audio slightly
but never write a paragraph.

Each dialogue line needs:
- "speaker": one of %s.
- "bubble_text": short punchy text, max 10 words.
- "visual_desc": a concise description of the doodle next to the character.
- "character_action": what the character is doing. Vary this between lines.
- "audio_script": the spoken narrative; the bubble text plus one or two
  sentences describing the visual.

Respond with JSON only, in exactly this shape:
{
  "topic": %q,
  "beats": [
    {
      "beat_id": 1,
      "dialogue": [
        {"speaker": %q, "bubble_text": "...", "visual_desc": "...", "character_action": "...", "audio_script": "..."}
      ]
    }
  ]
}`, topic, roster, languageInstruction(lang), roster, topic, speakers[0])
}

func promptFor(tpl domain.TemplateConfig, topic, lang string) string {
	if tpl.Template == domain.TemplateDialogue {
		return dialoguePrompt(topic, lang, tpl.Speakers)
	}
	return partsPrompt(topic, lang)
}

func correctivePrompt(violation error) string {
	return fmt.Sprintf(`The previous manifest was rejected: %v.
Produce a corrected manifest. Respond with JSON only, keep the exact field
names from the requested shape, give every beat a unique positive "beat_id",
and include at least one beat.`, violation)
}
