package accounting

import (
	"sort"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
)

// DefaultMaxDepth bounds tree walks when no depth is configured.
const DefaultMaxDepth = 16

// Chart is an in-memory index of the chart of accounts.
// All walks are iterative and bounded by maxDepth, so a corrupted parent link cannot loop forever.
type Chart struct {
	accounts map[string]domain.Account
	children map[string][]string
	codes    []string
	maxDepth int
}

// NewChart indexes accounts by code and by parent.
func NewChart(accounts []domain.Account, maxDepth int) *Chart {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	c := &Chart{
		accounts: make(map[string]domain.Account, len(accounts)),
		children: make(map[string][]string),
		codes:    make([]string, 0, len(accounts)),
		maxDepth: maxDepth,
	}
	for _, acc := range accounts {
		c.accounts[acc.Code] = acc
		c.codes = append(c.codes, acc.Code)
		if acc.ParentCode != "" {
			c.children[acc.ParentCode] = append(c.children[acc.ParentCode], acc.Code)
		}
	}
	sort.Strings(c.codes)
	for parent := range c.children {
		sort.Strings(c.children[parent])
	}
	return c
}

// Account looks up a single account.
func (c *Chart) Account(code string) (domain.Account, bool) {
	acc, ok := c.accounts[code]
	return acc, ok
}

// Accounts returns every account ordered by code.
func (c *Chart) Accounts() []domain.Account {
	out := make([]domain.Account, len(c.codes))
	for i, code := range c.codes {
		out[i] = c.accounts[code]
	}
	return out
}

// HasChildren reports whether any account names code as its parent.
func (c *Chart) HasChildren(code string) bool {
	return len(c.children[code]) > 0
}

// Ancestry returns the chain from code up to its root, code first.
func (c *Chart) Ancestry(code string) ([]domain.Account, error) {
	acc, ok := c.accounts[code]
	if !ok {
		return nil, apperrors.NewNotFoundError("account", code)
	}
	chain := []domain.Account{acc}
	seen := map[string]struct{}{code: {}}
	for acc.ParentCode != "" {
		if len(chain) >= c.maxDepth {
			return nil, apperrors.NewValidationError(apperrors.CodeDepthExceeded, "parentCode",
				"account %s exceeds the maximum depth of %d", code, c.maxDepth)
		}
		parent, ok := c.accounts[acc.ParentCode]
		if !ok {
			return nil, apperrors.NewNotFoundError("account", acc.ParentCode)
		}
		if _, dup := seen[parent.Code]; dup {
			return nil, apperrors.NewValidationError(apperrors.CodeDepthExceeded, "parentCode",
				"cycle detected in the ancestry of account %s at %s", code, parent.Code)
		}
		seen[parent.Code] = struct{}{}
		chain = append(chain, parent)
		acc = parent
	}
	return chain, nil
}

// Root returns the top-most ancestor of code, or the account itself when it is a root.
func (c *Chart) Root(code string) (domain.Account, error) {
	chain, err := c.Ancestry(code)
	if err != nil {
		return domain.Account{}, err
	}
	return chain[len(chain)-1], nil
}

// Descendants returns every direct and indirect child of code in depth-first order.
func (c *Chart) Descendants(code string) ([]domain.Account, error) {
	if _, ok := c.accounts[code]; !ok {
		return nil, apperrors.NewNotFoundError("account", code)
	}

	type frame struct {
		code  string
		depth int
	}
	var out []domain.Account
	seen := map[string]struct{}{code: {}}
	stack := []frame{{code: code}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		kids := c.children[top.code]
		if len(kids) > 0 && top.depth+1 >= c.maxDepth {
			return nil, apperrors.NewValidationError(apperrors.CodeDepthExceeded, "code",
				"subtree of %s exceeds the maximum depth of %d", code, c.maxDepth)
		}
		// Push in reverse so children pop in code order.
		for i := len(kids) - 1; i >= 0; i-- {
			kid := kids[i]
			if _, dup := seen[kid]; dup {
				return nil, apperrors.NewValidationError(apperrors.CodeDepthExceeded, "code",
					"cycle detected below account %s at %s", code, kid)
			}
			seen[kid] = struct{}{}
			stack = append(stack, frame{code: kid, depth: top.depth + 1})
		}
		if top.code != code {
			out = append(out, c.accounts[top.code])
		}
	}
	return out, nil
}

// SubtreeCodes returns code followed by the codes of all its descendants.
func (c *Chart) SubtreeCodes(code string) ([]string, error) {
	desc, err := c.Descendants(code)
	if err != nil {
		return nil, err
	}
	codes := make([]string, 0, len(desc)+1)
	codes = append(codes, code)
	for _, d := range desc {
		codes = append(codes, d.Code)
	}
	return codes, nil
}

// RollUp sums the raw activity of code and its whole subtree.
// Raw sums are undirected, so expressing the total in the header's normal side is
// the same as converting each descendant's balance into that side and adding.
func (c *Chart) RollUp(code string, activity map[string]domain.PeriodActivity) (domain.PeriodActivity, error) {
	codes, err := c.SubtreeCodes(code)
	if err != nil {
		return domain.PeriodActivity{}, err
	}
	total := domain.PeriodActivity{AccountCode: code}
	for _, sub := range codes {
		if a, ok := activity[sub]; ok {
			total = total.Add(a)
		}
	}
	return total, nil
}
