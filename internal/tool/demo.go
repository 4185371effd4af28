package tool

import "fmt"

// Demo responses are deterministic stand-ins used when no AI credential
// is configured. They carry the same shape as live responses so callers
// cannot distinguish modes structurally.

// snippet truncates text for embedding into canned responses. Counts
// runes so multibyte input is never cut mid-character.
func snippet(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max])
}

func demoSummarize(text string, _ Options) string {
	return fmt.Sprintf("**Summary:**\n\nThe original text condensed into three sentences:\n\n1. The main point concerns %s...\n2. The content carries the key supporting details.\n3. In conclusion, the core message comes through.", snippet(text, 50))
}

func demoGrammar(text string, _ Options) string {
	return fmt.Sprintf("**Grammar Check Results:**\n\nOverall Score: 85/100\n\n**Corrections:**\n- No major errors found\n- Consider using more varied sentence structures\n- Good use of punctuation\n\n**Improved Version:**\n%s", text)
}

func demoEmail(text string, _ Options) string {
	return fmt.Sprintf("**Subject:** Professional Follow-up Regarding %s...\n\nDear [Recipient],\n\nI hope this email finds you well. I am writing to discuss %s...\n\nI would appreciate the opportunity to discuss this matter further at your earliest convenience.\n\nBest regards,\n[Your Name]", snippet(text, 30), snippet(text, 50))
}

func demoSocial(text string, _ Options) string {
	return fmt.Sprintf("%s...\n\nDon't miss out on this amazing opportunity!\n\n#trending #viral #mustread #amazing #inspiration", snippet(text, 100))
}

func demoSEO(text string, _ Options) string {
	return fmt.Sprintf("**Meta Title:** %s\n\n**Meta Description:** Discover everything about %s. Learn more about this topic and get expert insights.\n\n**Keywords:** keyword1, keyword2, keyword3, keyword4, keyword5", snippet(text, 60), snippet(text, 100))
}

func demoHeadline(text string, _ Options) string {
	return fmt.Sprintf("**5 Compelling Headlines:**\n\n1. \"The Ultimate Guide to %s...\"\n2. \"Why Everyone Is Talking About %s...\"\n3. \"10 Things You Need to Know About %s...\"\n4. \"How %s... Changed Everything\"\n5. \"The Secret Behind %s...\"", snippet(text, 30), snippet(text, 25), snippet(text, 20), snippet(text, 30), snippet(text, 25))
}

func demoTranslate(text string, _ Options) string {
	return fmt.Sprintf("**Translation:**\n\n%s\n\n(This is a demo. Connect your OpenAI API key for actual translation.)", text)
}

func demoRewrite(text string, _ Options) string {
	return fmt.Sprintf("**Rewritten Content:**\n\n%s...\n\nIn other words, the content has been professionally rewritten to be more engaging while maintaining the original meaning.", snippet(text, 50))
}

func demoExpand(text string, _ Options) string {
	return fmt.Sprintf("**Expanded Content:**\n\n%s\n\nFurthermore, this topic encompasses several important aspects that deserve deeper exploration. The implications extend beyond the surface level, touching on fundamental principles that affect how we understand and interact with this subject matter.", text)
}

func demoSimplify(text string, _ Options) string {
	return fmt.Sprintf("**Simplified Explanation:**\n\nIn simple terms: %s...\n\nThink of it like this: It's basically a straightforward concept that anyone can understand with a little context.", snippet(text, 100))
}
