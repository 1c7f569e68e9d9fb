package auth

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Identity is the normalized caller identity derived from the gateway
// authorizer claims. It is built fresh for every request and never cached.
type Identity struct {
	SubjectID string
	Email     string
	IsAdmin   bool
	Groups    []string
}

func (id Identity) IsAuthenticated() bool {
	return id.SubjectID != ""
}

// The identity provider is not consistent about where it puts the group
// membership: depending on the authorizer flavor it shows up under different
// keys and in different shapes. First present key wins.
var groupClaimKeys = []string{
	"cognito:groups",
	"cognito:groups[]",
	"groups",
	"cognito_groups",
}

const adminGroup = "admin"

// Resolve derives an Identity from a raw claims bag. It is total: no claim
// shape causes an error, ambiguous input degrades to the least-privileged
// interpretation (no subject, no groups).
func Resolve(claims map[string]any) Identity {
	if claims == nil {
		return Identity{}
	}

	var rawGroups any
	for _, key := range groupClaimKeys {
		if v, ok := claims[key]; ok && v != nil {
			rawGroups = v
			break
		}
	}

	var groups []string
	for _, token := range toStringsFlexible(rawGroups) {
		token = strings.ToLower(strings.Trim(token, "[]"))
		if token == "" {
			continue
		}
		groups = append(groups, token)
	}

	isAdmin := false
	for _, g := range groups {
		if g == adminGroup {
			isAdmin = true
			break
		}
	}

	return Identity{
		SubjectID: stringClaim(claims, "sub"),
		Email:     stringClaim(claims, "email"),
		IsAdmin:   isAdmin,
		Groups:    groups,
	}
}

// toStringsFlexible coerces a group claim of unknown shape into a string
// slice. Arrays pass through with their elements stringified. Strings are
// first tried as bracket-delimited pseudo-JSON (single quotes tolerated),
// then split on commas and whitespace.
func toStringsFlexible(v any) []string {
	switch value := v.(type) {
	case nil:
		return nil
	case []string:
		return value
	case []any:
		out := make([]string, 0, len(value))
		for _, elem := range value {
			out = append(out, fmt.Sprint(elem))
		}
		return out
	case string:
		s := strings.TrimSpace(value)
		if s == "" {
			return nil
		}
		if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
			if parsed, ok := parseBracketedList(s); ok {
				return parsed
			}
		}
		return strings.FieldsFunc(s, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
		})
	default:
		return []string{fmt.Sprint(value)}
	}
}

func parseBracketedList(s string) ([]string, bool) {
	var elems []any
	if err := json.Unmarshal([]byte(strings.ReplaceAll(s, "'", `"`)), &elems); err != nil {
		return nil, false
	}
	out := make([]string, 0, len(elems))
	for _, elem := range elems {
		out = append(out, fmt.Sprint(elem))
	}
	return out, true
}

func stringClaim(claims map[string]any, key string) string {
	v, ok := claims[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
