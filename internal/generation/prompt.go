package generation

import (
	"fmt"
	"strings"
)

// subjectRule maps one model attribute to a natural-language fragment. The
// fragment is suppressed when the value is empty or matches one of the
// attribute's neutral sentinels, so adding an attribute is a table change
// rather than a new branch.
type subjectRule struct {
	pick      func(ModelAttributes) string
	sentinels map[string]struct{}
	format    string
}

func sentinels(values ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[strings.ToLower(v)] = struct{}{}
	}
	return set
}

var (
	ethnicitySentinels   = sentinels("default", "unspecified", "ambiguous", "ambiguous ethnicity")
	bodyTypeSentinels    = sentinels("default", "average", "unspecified")
	ageRangeSentinels    = sentinels("default", "unspecified", "26-35")
	heightSentinels      = sentinels("default", "average", "unspecified")
	hairStyleSentinels   = sentinels("default", "unspecified")
	hairColorSentinels   = sentinels("default", "natural", "unspecified")
	accessoriesSentinels = sentinels("default", "none", "unspecified", "no accessories")
	poseSentinels        = sentinels("default", "unspecified")
	environmentSentinels = sentinels("default", "none", "unspecified", "any")
)

var subjectRules = []subjectRule{
	{pick: func(m ModelAttributes) string { return m.Ethnicity }, sentinels: ethnicitySentinels, format: "%s"},
	{pick: func(m ModelAttributes) string { return m.BodyType }, sentinels: bodyTypeSentinels, format: "with %s body proportions"},
	{pick: func(m ModelAttributes) string { return m.AgeRange }, sentinels: ageRangeSentinels, format: "aged %s"},
	{pick: func(m ModelAttributes) string { return m.Height }, sentinels: heightSentinels, format: "of %s height"},
	{pick: hairFragment, sentinels: nil, format: "with %s hair"},
	{pick: func(m ModelAttributes) string { return m.Accessories }, sentinels: accessoriesSentinels, format: "accessorized with %s"},
}

// backgroundPresets maps each preset key to its canonical scene description.
var backgroundPresets = map[string]string{
	"studio-white":   "A professional photography studio with a seamless pure white backdrop",
	"studio-grey":    "A professional photography studio with a neutral grey backdrop and soft gradient falloff",
	"outdoor-nature": "Outdoor nature setting with lush greenery, trees, and soft natural scenery behind the model",
	"outdoor-urban":  "An urban street scene with modern architecture, storefronts, and city textures in the background",
	"beach":          "A sandy beach with the ocean and an open sky stretching out behind the model",
	"cafe":           "A cozy cafe interior with warm wood tones and softly blurred tables in the background",
	"office":         "A bright modern office interior with clean lines and large windows",
	"rooftop":        "A city rooftop terrace with a skyline view fading into the distance",
	"garden":         "A blooming garden with soft florals and layered greenery around the model",
	"snowy-street":   "A quiet city street covered in fresh snow in the middle of winter",
	"autumn-park":    "A park in full autumn color with fallen leaves scattered on the ground",
}

// seasonalPresets already fix a season; the season attribute is ignored for them.
var seasonalPresets = map[string]struct{}{
	"snowy-street": {},
	"autumn-park":  {},
}

const fallbackBackground = "A clean, well-lit background that keeps all attention on the subject"

const styleClause = "The image should look like an authentic fashion photograph, not a staged catalog shot. " +
	"The model has a natural, relaxed expression and effortless confidence. " +
	"The clothing item is the clear visual focus, rendered with accurate colors, fabric texture, and fit."

// BuildPrompt maps the structured settings into the natural-language prompt
// sent to the image model. It is pure and deterministic: identical inputs
// always produce a byte-identical prompt, because the prompt is persisted in
// the generation record and asserted on by tests.
func BuildPrompt(model ModelAttributes, env EnvironmentAttributes) string {
	paragraphs := []string{
		"Create a photorealistic, high-quality fashion photograph of " + buildSubject(model) + ".",
		"Setting: " + buildSetting(env),
		"Style: " + styleClause,
		"Technical details: " + buildTechnical(env),
	}
	return strings.Join(paragraphs, "\n\n")
}

func buildSubject(model ModelAttributes) string {
	var fragments []string
	for _, rule := range subjectRules {
		value := strings.TrimSpace(rule.pick(model))
		if value == "" || isSentinel(value, rule.sentinels) {
			continue
		}
		fragments = append(fragments, fmt.Sprintf(rule.format, value))
	}

	gender := strings.ToLower(strings.TrimSpace(model.Gender))
	if gender == "" || isSentinel(gender, environmentSentinels) {
		gender = "female"
	}
	pose := strings.TrimSpace(model.Pose)
	if pose == "" || isSentinel(pose, poseSentinels) {
		pose = "standing in a natural, relaxed pose"
	}

	var b strings.Builder
	b.WriteString("a ")
	if len(fragments) > 0 {
		b.WriteString(strings.Join(fragments, ", "))
		b.WriteString(" ")
	}
	b.WriteString(gender)
	b.WriteString(" model, ")
	b.WriteString(pose)
	b.WriteString(", wearing the clothing item shown in the provided image")
	return b.String()
}

// hairFragment merges style and color into one fragment, keeping whichever
// side survives its own sentinel filter.
func hairFragment(model ModelAttributes) string {
	style := strings.TrimSpace(model.HairStyle)
	if isSentinel(style, hairStyleSentinels) {
		style = ""
	}
	color := strings.TrimSpace(model.HairColor)
	if isSentinel(color, hairColorSentinels) {
		color = ""
	}
	switch {
	case style != "" && color != "":
		return strings.ToLower(color + " " + style)
	case style != "":
		return strings.ToLower(style)
	case color != "":
		return strings.ToLower(color)
	default:
		return ""
	}
}

func buildSetting(env EnvironmentAttributes) string {
	presetKey := strings.ToLower(strings.TrimSpace(env.BackgroundPreset))
	custom := strings.TrimSpace(env.BackgroundCustom)

	var sentences []string
	switch {
	case custom != "":
		sentences = append(sentences, "Custom setting: "+custom+".")
	default:
		desc, ok := backgroundPresets[presetKey]
		if !ok {
			desc = fallbackBackground
		}
		sentences = append(sentences, desc+".")
	}

	season := strings.TrimSpace(env.Season)
	_, seasonal := seasonalPresets[presetKey]
	if custom != "" {
		seasonal = false
	}
	if season != "" && !isSentinel(season, environmentSentinels) && !seasonal {
		sentences = append(sentences, "The scene reflects the "+strings.ToLower(season)+" season.")
	}

	if atmosphere := buildAtmosphere(env); atmosphere != "" {
		sentences = append(sentences, atmosphere)
	}
	return strings.Join(sentences, " ")
}

func buildAtmosphere(env EnvironmentAttributes) string {
	timeOfDay := strings.TrimSpace(env.TimeOfDay)
	if isSentinel(timeOfDay, environmentSentinels) {
		timeOfDay = ""
	}
	weather := strings.TrimSpace(env.Weather)
	if isSentinel(weather, environmentSentinels) {
		weather = ""
	}
	switch {
	case timeOfDay != "" && weather != "":
		return "The photo is taken during " + strings.ToLower(timeOfDay) + " with " + strings.ToLower(weather) + " weather conditions."
	case timeOfDay != "":
		return "The photo is taken during " + strings.ToLower(timeOfDay) + "."
	case weather != "":
		return "The photo is taken with " + strings.ToLower(weather) + " weather conditions."
	default:
		return ""
	}
}

func buildTechnical(env EnvironmentAttributes) string {
	lighting := strings.TrimSpace(env.Lighting)
	if lighting == "" || isSentinel(lighting, environmentSentinels) {
		lighting = "soft, professional lighting"
	} else {
		lighting = strings.ToLower(lighting) + " lighting"
	}

	lens := strings.TrimSpace(env.LensStyle)
	if lens == "" || isSentinel(lens, environmentSentinels) {
		lens = "a classic 85mm portrait lens look"
	} else {
		lens = "a " + strings.ToLower(lens) + " lens style"
	}

	angle := strings.TrimSpace(env.CameraAngle)
	if angle == "" || isSentinel(angle, environmentSentinels) {
		angle = "an eye-level camera angle"
	} else {
		angle = "a " + strings.ToLower(angle) + " camera angle"
	}

	return "Shot using " + lighting + ", " + lens + ", and " + angle +
		", with sharp focus on the garment and realistic fabric detail."
}

func isSentinel(value string, set map[string]struct{}) bool {
	if set == nil {
		return false
	}
	_, ok := set[strings.ToLower(strings.TrimSpace(value))]
	return ok
}
