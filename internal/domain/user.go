package domain

import "time"

// UserPlan enumerates billing plans.
type UserPlan string

const (
	UserPlanFree UserPlan = "free"
	UserPlanPro  UserPlan = "pro"
)

// FreePlanVideoLimit is the lifetime video cap for free accounts.
const FreePlanVideoLimit = 3

// User is the quota-relevant view of an account. The account store itself is
// an external collaborator; the pipeline only reads plan and usage and bumps
// the counter on confirmed success.
type User struct {
	ID         int64
	Plan       UserPlan
	VideoCount int
	CreatedAt  time.Time
}

// IsFree reports whether the user is on the free plan.
func (u User) IsFree() bool {
	return u.Plan == "" || u.Plan == UserPlanFree
}

// QuotaExhausted reports whether another video may be generated.
func (u User) QuotaExhausted() bool {
	return u.IsFree() && u.VideoCount >= FreePlanVideoLimit
}
