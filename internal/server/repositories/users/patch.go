package users

import (
	"fmt"
	"strings"
)

// Patch is a sparse edit of a user record; nil fields stay unchanged.
type Patch struct {
	Email    *string
	Username *string
	FullName *string
	IsActive *bool
}

// Statement is a SQL text with its positional arguments.
type Statement struct {
	SQL  string
	Args []any
}

type assignment struct {
	column string
	value  any
}

// assignments lists the set fields in the fixed column order
// email, username, full_name, is_active.
func (p Patch) assignments() []assignment {
	var out []assignment
	if p.Email != nil {
		out = append(out, assignment{"email", *p.Email})
	}
	if p.Username != nil {
		out = append(out, assignment{"username", *p.Username})
	}
	if p.FullName != nil {
		out = append(out, assignment{"full_name", *p.FullName})
	}
	if p.IsActive != nil {
		out = append(out, assignment{"is_active", *p.IsActive})
	}
	return out
}

// IsEmpty reports whether no field is set.
func (p Patch) IsEmpty() bool {
	return len(p.assignments()) == 0
}

// BuildUpdate renders the partial update of targetID. updated_at is always
// refreshed, so an empty patch is a valid statement. Placeholders are
// numbered from each value's position in Args, which makes $1..$N contiguous
// with targetID bound last.
func BuildUpdate(targetID string, p Patch) Statement {
	sets := p.assignments()

	clauses := make([]string, 0, len(sets)+1)
	args := make([]any, 0, len(sets)+1)

	clauses = append(clauses, "updated_at = NOW()")
	for _, a := range sets {
		args = append(args, a.value)
		clauses = append(clauses, fmt.Sprintf("%s = $%d", a.column, len(args)))
	}
	args = append(args, targetID)

	return Statement{
		SQL: fmt.Sprintf("UPDATE users SET %s WHERE id = $%d RETURNING %s",
			strings.Join(clauses, ", "), len(args), userColumns),
		Args: args,
	}
}
