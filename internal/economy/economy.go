package economy

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pmelhus/homequest/internal/model"
	"github.com/pmelhus/homequest/internal/notify"
	"github.com/pmelhus/homequest/internal/store"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrRewardNotFound     = errors.New("reward not found")
	ErrSuggestionNotFound = errors.New("suggestion not found")
	ErrInsufficientPoints = errors.New("insufficient points")
	ErrTitleRequired      = errors.New("title is required")
	ErrNegativeAmount     = errors.New("amount must be > 0")
	ErrNotParent          = errors.New("only a parent may do this")
	ErrAlreadyResolved    = errors.New("suggestion already resolved")
)

// Service is the reward economy: purchases, penalties, and the suggestion
// queue. Debits and credits run with their activity records in one
// transaction.
type Service struct {
	db       *sql.DB
	notifier *notify.Notifier
	logger   *slog.Logger
}

func NewService(db *sql.DB, notifier *notify.Notifier, logger *slog.Logger) *Service {
	return &Service{db: db, notifier: notifier, logger: logger}
}

// Purchase debits the reward's cost from the buyer's spendable points and
// records the spend. Rejected before any write when the buyer cannot afford
// it.
func (s *Service) Purchase(userID, rewardID int64) (*model.Activity, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	users := store.NewUserStore(tx)
	rewards := store.NewRewardStore(tx)
	activities := store.NewActivityStore(tx)

	user, err := users.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	reward, err := rewards.GetByID(rewardID)
	if err != nil {
		return nil, err
	}
	if reward == nil {
		return nil, ErrRewardNotFound
	}

	if user.Points < reward.Cost {
		return nil, ErrInsufficientPoints
	}

	if err := users.Spend(userID, reward.Cost); err != nil {
		return nil, err
	}

	activity, err := activities.Append(userID, model.ActivityPurchase, model.PurchaseDetails{
		RewardID: reward.ID,
		Title:    reward.Title,
		Cost:     reward.Cost,
	}, "")
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	s.logger.Info("reward purchased", "user_id", userID, "reward_id", rewardID, "cost", reward.Cost)
	return activity, nil
}

// ApplyPenalty deducts points from the target unconditionally; balances may
// go negative. Records a penalty activity and notifies the target.
func (s *Service) ApplyPenalty(targetID int64, amount int, reason string, appliedBy int64) (*model.Activity, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrTitleRequired
	}
	if amount <= 0 {
		return nil, ErrNegativeAmount
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	users := store.NewUserStore(tx)
	activities := store.NewActivityStore(tx)
	notifs := store.NewNotificationStore(tx)

	applier, err := users.GetByID(appliedBy)
	if err != nil {
		return nil, err
	}
	if applier == nil {
		return nil, ErrUserNotFound
	}
	if applier.Role != model.RoleParent {
		return nil, ErrNotParent
	}

	target, err := users.GetByID(targetID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, ErrUserNotFound
	}

	if err := users.Deduct(targetID, amount); err != nil {
		return nil, err
	}

	activity, err := activities.Append(targetID, model.ActivityPenalty, model.PenaltyDetails{
		Reason:    reason,
		Amount:    amount,
		AppliedBy: appliedBy,
	}, "")
	if err != nil {
		return nil, err
	}

	n, err := notifs.Create(targetID, model.NotifConsequenceApplied, "Penalty",
		fmt.Sprintf("-%d pts: %s", amount, reason), &activity.ID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	s.notifier.Announce(n)
	s.logger.Info("penalty applied", "target_id", targetID, "amount", amount, "applied_by", appliedBy)
	return activity, nil
}

// SuggestReward records a kid's reward proposal as a pending suggestion. No
// Reward is created until a parent approves it.
func (s *Service) SuggestReward(userID int64, title string, cost int, icon string) (*model.Activity, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if cost < 0 {
		return nil, ErrNegativeAmount
	}

	users := store.NewUserStore(s.db)
	user, err := users.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	activities := store.NewActivityStore(s.db)
	return activities.Append(userID, model.ActivitySuggestion, model.SuggestionDetails{
		Title:       title,
		Cost:        cost,
		Icon:        icon,
		SuggestedBy: userID,
	}, model.SuggestionPending)
}

// ApproveSuggestion turns a pending suggestion into a store Reward and marks
// it approved in the same transaction, so a second approval is rejected
// rather than minting a duplicate Reward. Parent-only.
func (s *Service) ApproveSuggestion(activityID, approverID int64) (*model.Reward, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	details, err := s.resolveSuggestion(tx, activityID, approverID)
	if err != nil {
		return nil, err
	}

	icon := details.Icon
	if icon == "" {
		icon = "🎁"
	}
	reward, err := store.NewRewardStore(tx).Create(details.Title, details.Cost, icon)
	if err != nil {
		return nil, err
	}

	if err := store.NewActivityStore(tx).SetSuggestionStatus(activityID, model.SuggestionApproved); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	s.logger.Info("suggestion approved", "activity_id", activityID, "reward_id", reward.ID)
	return reward, nil
}

// RejectSuggestion marks a pending suggestion rejected. Parent-only.
func (s *Service) RejectSuggestion(activityID, approverID int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := s.resolveSuggestion(tx, activityID, approverID); err != nil {
		return err
	}
	if err := store.NewActivityStore(tx).SetSuggestionStatus(activityID, model.SuggestionRejected); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// resolveSuggestion loads a pending suggestion and checks the approver's
// role, returning the decoded proposal.
func (s *Service) resolveSuggestion(tx store.DBTX, activityID, approverID int64) (*model.SuggestionDetails, error) {
	users := store.NewUserStore(tx)
	approver, err := users.GetByID(approverID)
	if err != nil {
		return nil, err
	}
	if approver == nil {
		return nil, ErrUserNotFound
	}
	if approver.Role != model.RoleParent {
		return nil, ErrNotParent
	}

	activity, err := store.NewActivityStore(tx).GetByID(activityID)
	if err != nil {
		return nil, err
	}
	if activity == nil || activity.Type != model.ActivitySuggestion {
		return nil, ErrSuggestionNotFound
	}
	if activity.Status == nil || *activity.Status != string(model.SuggestionPending) {
		return nil, ErrAlreadyResolved
	}

	var details model.SuggestionDetails
	if err := json.Unmarshal(activity.Details, &details); err != nil {
		return nil, fmt.Errorf("decode suggestion details: %w", err)
	}
	return &details, nil
}
