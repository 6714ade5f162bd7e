package auth

import "context"

type contextKey string

const (
	contextKeyBranch  contextKey = "auth.branch_id"
	contextKeyRole    contextKey = "auth.role"
	contextKeySubject contextKey = "auth.subject"
)

// WithIdentity stores auth identity details in context.
func WithIdentity(ctx context.Context, branchID string, role Role, subject string) context.Context {
	ctx = context.WithValue(ctx, contextKeyBranch, branchID)
	ctx = context.WithValue(ctx, contextKeyRole, role)
	ctx = context.WithValue(ctx, contextKeySubject, subject)
	return ctx
}

// BranchIDFromContext extracts the branch scope from context. Empty means
// the caller may see every branch.
func BranchIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if branchID, ok := ctx.Value(contextKeyBranch).(string); ok {
		return branchID
	}
	return ""
}

// RoleFromContext extracts role from context.
func RoleFromContext(ctx context.Context) Role {
	if ctx == nil {
		return ""
	}
	value := ctx.Value(contextKeyRole)
	if role, ok := value.(Role); ok {
		return role
	}
	if role, ok := value.(string); ok {
		if normalized, valid := NormalizeRole(role); valid {
			return normalized
		}
	}
	return ""
}

// SubjectFromContext extracts subject from context.
func SubjectFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if subject, ok := ctx.Value(contextKeySubject).(string); ok {
		return subject
	}
	return ""
}
