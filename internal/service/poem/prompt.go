package poem

import (
	"fmt"
	"strings"
)

// buildSystemPrompt describes the poet role and the requested style and mood.
func buildSystemPrompt(style, mood string) string {
	return fmt.Sprintf(`You are a gifted poet with expertise in various poetic forms and styles. Your task is to create beautiful, meaningful poetry that captures emotions and paints vivid imagery.

Guidelines:
- Write in %s style
- Convey a %s mood and emotional tone
- Use rich, sensory language and metaphors
- Create authentic, heartfelt expression
- Ensure proper rhythm and flow
- Make each line meaningful and purposeful
- Avoid clichés and create original imagery

Remember to follow the specific structural requirements of the chosen poetry style while maintaining emotional authenticity and creative expression.`, style, mood)
}

// buildUserPrompt embeds the theme together with the style's structural guidance.
func buildUserPrompt(theme, style, mood, guidance string) string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Create a %s poem with a %s mood about: %s.\n\n", style, mood, theme))
	builder.WriteString("Make the poem meaningful, creative, and emotionally resonant. Focus on vivid imagery and authentic expression.\n\n")
	builder.WriteString(guidance)
	builder.WriteString("\n\nReturn only the poem text without any additional commentary, titles, or explanations.")
	return builder.String()
}
