// Prompt variants and the batch payload/response codec.
//
// Variants are a named registry keyed by an enum so new message styles are
// additive; handlers map the request's boolean toggle onto a Variant and
// never branch on prompt text themselves.
package generation

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Variant selects the system-prompt strategy for a generation request.
type Variant string

const (
	// VariantDirect produces messages that name the open role and the
	// sender's interest in it outright.
	VariantDirect Variant = "direct"
	// VariantRelationship produces relationship-building messages that open a
	// conversation without mentioning the job.
	VariantRelationship Variant = "relationship"
)

// VariantFor maps the request-level toggle onto a registry key.
func VariantFor(mentionJob bool) Variant {
	if mentionJob {
		return VariantDirect
	}
	return VariantRelationship
}

// variantPrompts is the system-prompt registry. Each prompt pins the response
// contract: a bare JSON array, one object per input prospect, same order.
var variantPrompts = map[Variant]string{
	VariantDirect: `You write short, personalized outreach messages for a job seeker contacting people at companies with open roles.
For EACH prospect in the user's JSON input, write one message to the named contact that: mentions the specific role and company directly, references exactly one of the prospect's listed challenges, and ties it to exactly one line of the candidate's highlights. Keep each message under 120 words, professional but warm, no emojis, no placeholders.
Respond with ONLY a JSON array, one object per prospect, in the same order as the input array. Each object must have exactly these fields: "subject", "message", "selected_highlight", "selected_challenge".`,
	VariantRelationship: `You write short, personalized networking messages for a job seeker starting conversations with people at companies they admire.
For EACH prospect in the user's JSON input, write one message to the named contact that opens a genuine professional conversation WITHOUT mentioning any job opening or that the sender is looking for work. Reference exactly one of the prospect's listed challenges and tie it to exactly one line of the candidate's highlights. Keep each message under 120 words, curious and specific, no emojis, no placeholders.
Respond with ONLY a JSON array, one object per prospect, in the same order as the input array. Each object must have exactly these fields: "subject", "message", "selected_highlight", "selected_challenge".`,
}

// SystemPrompt assembles the full system context for a batch: the variant
// template plus optional free-text custom instructions and regeneration
// feedback, both appended verbatim.
func SystemPrompt(v Variant, customInstructions, feedback string) string {
	base, ok := variantPrompts[v]
	if !ok {
		base = variantPrompts[VariantRelationship]
	}
	var b strings.Builder
	b.WriteString(base)
	if s := strings.TrimSpace(customInstructions); s != "" {
		b.WriteString("\n\nAdditional instructions from the sender:\n")
		b.WriteString(s)
	}
	if s := strings.TrimSpace(feedback); s != "" {
		b.WriteString("\n\nThe sender rejected the previous draft with this feedback; write a noticeably different message that addresses it:\n")
		b.WriteString(s)
	}
	return b.String()
}

// PayloadItem is one prospect's slice of the combined batch payload.
type PayloadItem struct {
	Company          string   `json:"company"`
	JobTitle         string   `json:"job_title"`
	Location         string   `json:"location,omitempty"`
	ContactFirstName string   `json:"contact_first_name"`
	Challenges       []string `json:"challenges"`
}

// batchPayload is the user-content document for one generation call.
type batchPayload struct {
	CandidateHighlights string        `json:"candidate_highlights"`
	Prospects           []PayloadItem `json:"prospects"`
}

// BuildBatchPayload serializes the combined structured request for one batch:
// the candidate's highlight text plus the prospect array in queue order.
func BuildBatchPayload(highlights string, items []PayloadItem) (string, error) {
	raw, err := json.Marshal(batchPayload{
		CandidateHighlights: highlights,
		Prospects:           items,
	})
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// Draft is one parsed generation result.
type Draft struct {
	Subject           string `json:"subject"`
	Message           string `json:"message"`
	SelectedHighlight string `json:"selected_highlight"`
	SelectedChallenge string `json:"selected_challenge"`
}

// ParseBatchResponse decodes the provider's raw text as a JSON array of
// drafts and checks it has exactly want elements. Position i of the result
// corresponds to position i of the request payload — the provider is trusted
// to preserve order, and nothing beyond the length is validated.
//
// Providers routinely wrap JSON in markdown code fences; those are stripped
// before decoding.
func ParseBatchResponse(raw string, want int) ([]Draft, error) {
	body := stripCodeFence(raw)
	var drafts []Draft
	if err := json.Unmarshal([]byte(body), &drafts); err != nil {
		return nil, fmt.Errorf("generation response is not a JSON array: %w", err)
	}
	if len(drafts) != want {
		return nil, fmt.Errorf("generation response has %d items, want %d", len(drafts), want)
	}
	for i := range drafts {
		if strings.TrimSpace(drafts[i].Message) == "" {
			return nil, fmt.Errorf("generation response item %d has an empty message", i)
		}
	}
	return drafts, nil
}

// stripCodeFence removes a surrounding ```...``` block (with or without a
// language tag) and trims whitespace.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		// Drop a language tag like "json" on the fence line.
		first := strings.TrimSpace(s[:i])
		if first == "" || !strings.ContainsAny(first, "[{") {
			s = s[i+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
