package users

import (
	"fmt"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestBuildUpdate_EmptyPatchOnlyTouchesUpdatedAt(t *testing.T) {
	st := BuildUpdate("u-1", Patch{})

	assert.Equal(t,
		"UPDATE users SET updated_at = NOW() WHERE id = $1 RETURNING "+userColumns,
		st.SQL)
	assert.Equal(t, []any{"u-1"}, st.Args)
}

func TestBuildUpdate_AllFieldsInFixedOrder(t *testing.T) {
	st := BuildUpdate("u-1", Patch{
		IsActive: boolPtr(false),
		FullName: strPtr("Alice A"),
		Username: strPtr("alice2"),
		Email:    strPtr("a2@example.com"),
	})

	assert.Equal(t,
		"UPDATE users SET updated_at = NOW(), email = $1, username = $2, full_name = $3, is_active = $4 WHERE id = $5 RETURNING "+userColumns,
		st.SQL)
	assert.Equal(t, []any{"a2@example.com", "alice2", "Alice A", false, "u-1"}, st.Args)
}

func TestBuildUpdate_SingleField(t *testing.T) {
	st := BuildUpdate("u-7", Patch{IsActive: boolPtr(true)})

	assert.Contains(t, st.SQL, "SET updated_at = NOW(), is_active = $1 WHERE id = $2")
	assert.Equal(t, []any{true, "u-7"}, st.Args)
}

var placeholderRe = regexp.MustCompile(`\$(\d+)`)

// Every subset of fields must yield placeholders $1..$N in order, with the
// target id bound last.
func TestBuildUpdate_AllCombinations(t *testing.T) {
	names := []string{"email", "username", "full_name", "is_active"}

	for mask := 0; mask < 1<<len(names); mask++ {
		var p Patch
		var want []string
		if mask&1 != 0 {
			p.Email = strPtr("e@example.com")
			want = append(want, "email")
		}
		if mask&2 != 0 {
			p.Username = strPtr("user")
			want = append(want, "username")
		}
		if mask&4 != 0 {
			p.FullName = strPtr("Full Name")
			want = append(want, "full_name")
		}
		if mask&8 != 0 {
			p.IsActive = boolPtr(true)
			want = append(want, "is_active")
		}

		t.Run(fmt.Sprintf("mask=%04b", mask), func(t *testing.T) {
			st := BuildUpdate("target", p)

			require.Len(t, st.Args, len(want)+1)
			assert.Equal(t, "target", st.Args[len(st.Args)-1])
			assert.Equal(t, len(want) == 0, p.IsEmpty())

			matches := placeholderRe.FindAllStringSubmatch(st.SQL, -1)
			require.Len(t, matches, len(st.Args))
			for i, m := range matches {
				assert.Equal(t, fmt.Sprint(i+1), m[1])
			}

			setClause := st.SQL[len("UPDATE users SET "):strings.Index(st.SQL, " WHERE ")]
			parts := strings.Split(setClause, ", ")
			require.Len(t, parts, len(want)+1)
			assert.Equal(t, "updated_at = NOW()", parts[0])
			for i, col := range want {
				assert.Equal(t, fmt.Sprintf("%s = $%d", col, i+1), parts[i+1])
			}
		})
	}
}
