package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/bher20/eratecharge/internal/config"
)

const (
	RoleAdmin   = "admin"
	RoleBiller  = "biller"
	RoleAuditor = "auditor"
)

// Roles lists every role a token may carry.
var Roles = []string{RoleAdmin, RoleBiller, RoleAuditor}

// ValidRole reports whether role is one of Roles.
func ValidRole(role string) bool {
	return lo.Contains(Roles, role)
}

// Objects and actions checked by the API.
const (
	ObjCharges = "charges"
	ActCreate  = "create"
	ActRead    = "read"
)

var ErrInvalidToken = errors.New("invalid token")

// Principal is the identity behind a validated token. Subject is the casbin
// subject it is enforced as; Name is only a label.
type Principal struct {
	Subject string
	Name    string
	Role    string
}

// subjectFor derives the casbin subject from a token digest. The prefix keeps
// subjects disjoint from role names.
func subjectFor(digest string) string {
	return "token:" + digest
}

type Service struct {
	tokens   map[string]Principal // keyed by sha256 hex digest
	enforcer *casbin.Enforcer
}

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && (r.obj == p.obj || p.obj == "*") && (r.act == p.act || p.act == "*")
`

// NewService builds the RBAC enforcer and registers the configured tokens.
// With no tokens the service is disabled and every request is allowed.
func NewService(tokens []config.TokenConfig) (*Service, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, err
	}
	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}

	policies := [][]string{
		{RoleAdmin, "*", "*"},
		{RoleBiller, ObjCharges, ActCreate},
		{RoleBiller, ObjCharges, ActRead},
		{RoleAuditor, ObjCharges, ActRead},
	}
	for _, p := range policies {
		if _, err := e.AddPolicy(p[0], p[1], p[2]); err != nil {
			return nil, fmt.Errorf("add policy %v: %w", p, err)
		}
	}

	s := &Service{tokens: make(map[string]Principal), enforcer: e}
	names := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		if !ValidRole(t.Role) {
			return nil, fmt.Errorf("token %q: unknown role %q", t.Name, t.Role)
		}
		digest := strings.ToLower(t.SHA256)
		if _, err := hex.DecodeString(digest); err != nil || len(digest) != sha256.Size*2 {
			return nil, fmt.Errorf("token %q: sha256 must be a 64 character hex digest", t.Name)
		}
		if names[t.Name] {
			return nil, fmt.Errorf("token %q: duplicate name", t.Name)
		}
		if _, dup := s.tokens[digest]; dup {
			return nil, fmt.Errorf("token %q: digest already used by %q", t.Name, s.tokens[digest].Name)
		}
		names[t.Name] = true

		p := Principal{Subject: subjectFor(digest), Name: t.Name, Role: t.Role}
		s.tokens[digest] = p
		if _, err := e.AddGroupingPolicy(p.Subject, t.Role); err != nil {
			return nil, fmt.Errorf("token %q: %w", t.Name, err)
		}
	}
	return s, nil
}

// Enabled reports whether any tokens are configured.
func (s *Service) Enabled() bool {
	return len(s.tokens) > 0
}

func (s *Service) ValidateToken(rawToken string) (*Principal, error) {
	p, ok := s.tokens[HashToken(rawToken)]
	if !ok {
		return nil, ErrInvalidToken
	}
	return &p, nil
}

// Enforce checks a casbin subject (Principal.Subject) against obj and act.
func (s *Service) Enforce(sub, obj, act string) (bool, error) {
	return s.enforcer.Enforce(sub, obj, act)
}

// HashToken returns the hex SHA-256 digest under which a token is configured.
func HashToken(rawToken string) string {
	sum := sha256.Sum256([]byte(rawToken))
	return hex.EncodeToString(sum[:])
}

// GenerateToken returns a new random token and its digest.
func GenerateToken() (string, string) {
	raw := strings.ReplaceAll(uuid.New().String()+uuid.New().String(), "-", "")
	return raw, HashToken(raw)
}
