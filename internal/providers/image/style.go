package image

import "github.com/aayush-wiz/doodle-ai-app/internal/domain"

// styleTreatment augments a scene prompt for a given visual style. The
// suffixes steer the model toward the white-background doodle look each
// style's reveal animation is tuned for.
type styleTreatment struct {
	suffix   string
	negative string
}

var styleTreatments = map[domain.Style]styleTreatment{
	domain.StyleNormal: {
		suffix:   ", flat vector graphics, high quality, professional corporate training style",
		negative: "photorealistic, 3d, realistic, blurry, low quality, texture, shading, pencil, sketch, hand-drawn, messy",
	},
	domain.StyleSolid: {
		suffix:   ", colorful infographic on pure white background, fine colored lines, technical diagram, elegant, clean, no heavy fills, vibrant colors, educational, vector style",
		negative: "grayscale, black and white, monochrome, dark background, texture, heavy fills, painting, realistic, photo, 3d, gradient, blurry, messy, sketch, pencil",
	},
	domain.StylePencil: {
		suffix:   ", detailed graphite pencil sketch on white paper, gray lines, hand-drawn, artistic, shading, technical drawing style",
		negative: "color, ink, marker, heavy lines, solid black, photo, realistic, 3d, digital art",
	},
	domain.StyleCartoon: {
		suffix:   ", The Simpsons style illustration, Matt Groening style, vibrantly colored characters and elements, flat design, white background, comic book style, clean lines",
		negative: "shading, gradients, realistic, photorealistic, 3d, textured, messy, sketch lines, hatching, blurry, gray",
	},
}

func treatmentFor(style domain.Style) styleTreatment {
	if t, ok := styleTreatments[style]; ok {
		return t
	}
	return styleTreatments[domain.StyleNormal]
}
