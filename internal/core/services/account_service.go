package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/SscSPs/ledger_engine/internal/utils/accounting"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// accountService implements the AccountSvcFacade interface
type accountService struct {
	BaseService
	accountRepo portsrepo.AccountRepositoryFacade
	validate    *validator.Validate
	maxDepth    int
}

// AccountServiceOption is a functional option for configuring the account service
type AccountServiceOption func(*accountService)

// WithMaxAccountDepth bounds the depth of the account tree.
func WithMaxAccountDepth(depth int) AccountServiceOption {
	return func(s *accountService) {
		if depth > 0 {
			s.maxDepth = depth
		}
	}
}

// WithAccountBase sets shared service dependencies such as the clock.
func WithAccountBase(base BaseService) AccountServiceOption {
	return func(s *accountService) {
		s.BaseService = base
	}
}

// NewAccountService creates a new account service with the provided options
func NewAccountService(repo portsrepo.AccountRepositoryFacade, options ...AccountServiceOption) portssvc.AccountSvcFacade {
	svc := &accountService{
		accountRepo: repo,
		validate:    newValidator(),
		maxDepth:    accounting.DefaultMaxDepth,
	}

	// Apply all options
	for _, option := range options {
		option(svc)
	}

	return svc
}

// Ensure accountService implements the AccountSvcFacade interface
var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// validationFromStruct turns the first validator failure into a field-level ValidationError.
func (s *accountService) validationFromStruct(req any) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return apperrors.NewValidationError(apperrors.CodeRequiredField, fe.Field(), "%s is required", fe.Field())
	}
	return apperrors.NewValidationError(apperrors.CodeRequiredField, "", "invalid request: %v", err)
}

func (s *accountService) loadChart(ctx context.Context) (*accounting.Chart, error) {
	accounts, err := s.accountRepo.ListAccounts(ctx, domain.AccountFilter{})
	if err != nil {
		s.LogError(ctx, err, "Failed to load chart of accounts")
		return nil, fmt.Errorf("failed to load chart of accounts: %w", err)
	}
	return accounting.NewChart(accounts, s.maxDepth), nil
}

func (s *accountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, userID string) (*domain.Account, error) {
	req.Code = strings.TrimSpace(req.Code)
	req.Name = strings.TrimSpace(req.Name)
	if req.ParentCode != nil && strings.TrimSpace(*req.ParentCode) == "" {
		req.ParentCode = nil
	}
	if err := s.validationFromStruct(req); err != nil {
		return nil, err
	}
	if !domain.ValidCode(req.Code) {
		return nil, apperrors.NewValidationError(apperrors.CodeInvalidCode, "code",
			"code %q must be digit segments separated by %q", req.Code, domain.CodeSeparator)
	}

	if _, err := s.accountRepo.FindAccountByCode(ctx, req.Code); err == nil {
		return nil, apperrors.NewValidationError(apperrors.CodeDuplicateCode, "code", "account %s already exists", req.Code)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Failed to check account code", slog.String("account_code", req.Code))
		return nil, err
	}

	now := s.now()
	account := domain.Account{
		AccountID:   uuid.NewString(),
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
		Permanent:   req.Permanent,
		IsActive:    true,
		Level:       1,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if req.ParentCode != nil {
		if err := s.inheritFromParent(ctx, &account, strings.TrimSpace(*req.ParentCode)); err != nil {
			return nil, err
		}
	} else {
		if strings.Contains(req.Code, domain.CodeSeparator) {
			return nil, apperrors.NewValidationError(apperrors.CodeInvalidCode, "code",
				"root account code %s must be a single segment; set parentCode for nested accounts", req.Code)
		}
		if !req.AccountType.IsValid() {
			return nil, apperrors.NewValidationError(apperrors.CodeTypeMismatch, "accountType", "unknown account type %q", req.AccountType)
		}
		expected, _ := domain.NormalBalanceFor(req.AccountType)
		if req.NormalBalance != expected {
			return nil, apperrors.NewValidationError(apperrors.CodeTypeMismatch, "normalBalance",
				"%s accounts have a %s normal balance, got %q", req.AccountType, expected, req.NormalBalance)
		}
		account.AccountType = req.AccountType
		account.NormalBalance = expected
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, apperrors.NewValidationError(apperrors.CodeDuplicateCode, "code", "account %s already exists", req.Code)
		}
		s.LogError(ctx, err, "Failed to save account", slog.String("account_code", account.Code))
		return nil, err
	}

	s.LogInfo(ctx, "Account created successfully",
		slog.String("account_code", account.Code),
		slog.String("account_type", string(account.AccountType)))
	return &account, nil
}

// inheritFromParent places account under parentCode, copying the type of the root ancestor.
func (s *accountService) inheritFromParent(ctx context.Context, account *domain.Account, parentCode string) error {
	chart, err := s.loadChart(ctx)
	if err != nil {
		return err
	}
	parent, ok := chart.Account(parentCode)
	if !ok {
		return apperrors.NewValidationError(apperrors.CodeInvalidParent, "parentCode", "parent account %s does not exist", parentCode)
	}
	if !domain.IsChildCode(parent.Code, account.Code) {
		return apperrors.NewValidationError(apperrors.CodeInvalidCode, "code",
			"code %s must start with its parent code %s%s", account.Code, parent.Code, domain.CodeSeparator)
	}

	ancestry, err := chart.Ancestry(parent.Code)
	if err != nil {
		return err
	}
	account.Level = len(ancestry) + 1
	if account.Level > s.maxDepth {
		return apperrors.NewValidationError(apperrors.CodeDepthExceeded, "parentCode",
			"account %s would be at level %d, the maximum is %d", account.Code, account.Level, s.maxDepth)
	}

	if !parent.IsHeader {
		used, err := s.accountRepo.HasJournalLines(ctx, []string{parent.Code})
		if err != nil {
			s.LogError(ctx, err, "Failed to check parent journal lines", slog.String("account_code", parent.Code))
			return err
		}
		if used {
			return apperrors.NewValidationError(apperrors.CodeInvalidParent, "parentCode",
				"account %s already has journal lines and cannot become a header", parent.Code)
		}
	}

	root := ancestry[len(ancestry)-1]
	side, ok := domain.NormalBalanceFor(root.AccountType)
	if !ok {
		return apperrors.NewAppError(500, fmt.Sprintf("root account %s has invalid type %q", root.Code, root.AccountType), nil)
	}
	account.ParentCode = parent.Code
	account.AccountType = root.AccountType
	account.NormalBalance = side
	return nil
}

func (s *accountService) GetAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByCode(ctx, code)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find account by code", slog.String("account_code", code))
		}
		return nil, err // Propagate error (including NotFound)
	}
	return account, nil
}

func (s *accountService) ListAccounts(ctx context.Context, filter domain.AccountFilter) ([]domain.Account, error) {
	accounts, err := s.accountRepo.ListAccounts(ctx, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts")
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	if accounts == nil {
		return []domain.Account{}, nil // Return empty slice if repo returns nil
	}
	s.LogDebug(ctx, "Accounts listed successfully", slog.Int("count", len(accounts)))
	return accounts, nil
}

func (s *accountService) ListChildren(ctx context.Context, code string) ([]domain.Account, error) {
	if _, err := s.GetAccountByCode(ctx, code); err != nil {
		return nil, err
	}
	children, err := s.accountRepo.ListChildren(ctx, code)
	if err != nil {
		s.LogError(ctx, err, "Failed to list child accounts", slog.String("account_code", code))
		return nil, err
	}
	if children == nil {
		return []domain.Account{}, nil
	}
	return children, nil
}

func (s *accountService) ResolveAncestry(ctx context.Context, code string) ([]domain.Account, error) {
	chart, err := s.loadChart(ctx)
	if err != nil {
		return nil, err
	}
	return chart.Ancestry(code)
}

func (s *accountService) UpdateAccount(ctx context.Context, code string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error) {
	account, err := s.GetAccountByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	now := s.now()

	if req.AccountType != nil || req.NormalBalance != nil {
		if err := s.retype(ctx, account, req.AccountType, req.NormalBalance, userID); err != nil {
			return nil, err
		}
	}

	updated := false
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperrors.NewValidationError(apperrors.CodeRequiredField, "name", "name is required")
		}
		account.Name = name
		updated = true
	}
	if req.Description != nil {
		account.Description = *req.Description
		updated = true
	}
	if req.Permanent != nil {
		account.Permanent = *req.Permanent
		updated = true
	}
	if req.IsActive != nil {
		account.IsActive = *req.IsActive
		updated = true
	}
	if !updated {
		s.LogDebug(ctx, "No descriptive fields provided for account update", slog.String("account_code", code))
		return account, nil
	}

	account.LastUpdatedAt = now
	account.LastUpdatedBy = userID
	if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		s.LogError(ctx, err, "Failed to update account", slog.String("account_code", code))
		return nil, err
	}

	s.LogInfo(ctx, "Account updated successfully", slog.String("account_code", code))
	return account, nil
}

// retype applies a type or normal balance change. Only roots carry their own type,
// and only while nothing in their subtree has been journaled.
func (s *accountService) retype(ctx context.Context, account *domain.Account, newType *domain.AccountType, newSide *domain.BalanceSide, userID string) error {
	targetType := account.AccountType
	if newType != nil {
		targetType = *newType
	}
	if !targetType.IsValid() {
		return apperrors.NewValidationError(apperrors.CodeTypeMismatch, "accountType", "unknown account type %q", targetType)
	}
	targetSide, _ := domain.NormalBalanceFor(targetType)
	if newSide != nil && *newSide != targetSide {
		return apperrors.NewValidationError(apperrors.CodeTypeMismatch, "normalBalance",
			"%s accounts have a %s normal balance, got %q", targetType, targetSide, *newSide)
	}
	if targetType == account.AccountType && targetSide == account.NormalBalance {
		return nil
	}
	chart, err := s.loadChart(ctx)
	if err != nil {
		return err
	}
	subtree, err := chart.SubtreeCodes(account.Code)
	if err != nil {
		return err
	}
	used, err := s.accountRepo.HasJournalLines(ctx, subtree)
	if err != nil {
		s.LogError(ctx, err, "Failed to check journal lines", slog.String("account_code", account.Code))
		return err
	}
	if used {
		return apperrors.NewValidationError(apperrors.CodeTypeLocked, "accountType",
			"account %s or one of its descendants has journal lines", account.Code)
	}
	if !account.IsRoot() {
		return apperrors.NewValidationError(apperrors.CodeTypeMismatch, "accountType",
			"account %s inherits its type from its root account", account.Code)
	}

	now := s.now()
	if err := s.accountRepo.RetypeSubtree(ctx, account.Code, targetType, targetSide, userID, now); err != nil {
		s.LogError(ctx, err, "Failed to change account type", slog.String("account_code", account.Code))
		return err
	}
	account.AccountType = targetType
	account.NormalBalance = targetSide
	account.LastUpdatedAt = now
	account.LastUpdatedBy = userID
	s.LogInfo(ctx, "Account type changed",
		slog.String("account_code", account.Code),
		slog.String("account_type", string(targetType)),
		slog.Int("subtree_size", len(subtree)))
	return nil
}

func (s *accountService) ActivateAccount(ctx context.Context, code string, userID string) (*domain.Account, error) {
	return s.setActive(ctx, code, true, userID)
}

func (s *accountService) DeactivateAccount(ctx context.Context, code string, userID string) (*domain.Account, error) {
	return s.setActive(ctx, code, false, userID)
}

func (s *accountService) setActive(ctx context.Context, code string, active bool, userID string) (*domain.Account, error) {
	account, err := s.GetAccountByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if err := s.accountRepo.SetAccountActive(ctx, code, active, userID, now); err != nil {
		s.LogError(ctx, err, "Failed to toggle account", slog.String("account_code", code), slog.Bool("active", active))
		return nil, err
	}
	account.IsActive = active
	account.LastUpdatedAt = now
	account.LastUpdatedBy = userID

	s.LogInfo(ctx, "Account active flag changed", slog.String("account_code", code), slog.Bool("active", active))
	return account, nil
}

func (s *accountService) DeleteAccount(ctx context.Context, code string) error {
	if _, err := s.GetAccountByCode(ctx, code); err != nil {
		return err
	}

	children, err := s.accountRepo.ListChildren(ctx, code)
	if err != nil {
		s.LogError(ctx, err, "Failed to list child accounts", slog.String("account_code", code))
		return err
	}
	if len(children) > 0 {
		return apperrors.NewValidationError(apperrors.CodeHasChildren, "code", "account %s has %d child accounts", code, len(children))
	}

	used, err := s.accountRepo.HasJournalLines(ctx, []string{code})
	if err != nil {
		s.LogError(ctx, err, "Failed to check journal lines", slog.String("account_code", code))
		return err
	}
	if used {
		return apperrors.NewValidationError(apperrors.CodeHasJournalEntries, "code", "account %s has journal lines; deactivate it instead", code)
	}

	if err := s.accountRepo.DeleteAccount(ctx, code); err != nil {
		s.LogError(ctx, err, "Failed to delete account", slog.String("account_code", code))
		return err
	}
	s.LogInfo(ctx, "Account deleted", slog.String("account_code", code))
	return nil
}
