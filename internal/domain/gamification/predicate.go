package gamification

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	multiQtyThreshold    = 3
	familyCategoryCount  = 5
	loyalOrdersPerWeek   = 2
	earlyBirdBeforeHour  = 9
	earlyBirdFromHour    = 21
	vitaminCategoryToken = "vitamin"
)

// BigSpenderThreshold is the order total that completes big_spender
var BigSpenderThreshold = decimal.NewFromInt(100000)

// LineFact is what mission predicates know about one order line
type LineFact struct {
	ProductID    uuid.UUID
	CategoryID   uuid.UUID
	CategoryName string
	Quantity     int
	HasPromotion bool
}

// OrderFacts is the order snapshot missions are evaluated against
type OrderFacts struct {
	OrderID   uuid.UUID
	UserID    uuid.UUID
	CreatedAt time.Time
	Total     decimal.Decimal
	Lines     []LineFact

	// AllCategoryIDs lists every category in the catalog.
	AllCategoryIDs []uuid.UUID

	// OrdersThisWeek counts the user's orders in the ISO week of CreatedAt,
	// this order included.
	OrdersThisWeek int64
}

// Evaluation is the input of a single predicate call
type Evaluation struct {
	Order OrderFacts

	// HasRecord is true when the user already has a completion record for
	// the mission under evaluation.
	HasRecord bool
}

// Predicate decides whether an order completes a mission
type Predicate func(Evaluation) bool

var predicates = map[Code]Predicate{
	CodeMultiQty:    multiQty,
	CodeEarlyBird:   earlyBird,
	CodeFamilyOrder: familyOrder,
	CodeVitaminFan:  vitaminFan,
	CodePromoHunter: promoHunter,
	CodeAllTypes:    allTypes,
	CodeLoyalClient: loyalClient,
	CodeFirstOrder:  firstOrder,
	CodeBigSpender:  bigSpender,
}

// PredicateFor returns the completion test for code
func PredicateFor(code Code) (Predicate, bool) {
	p, ok := predicates[code]
	return p, ok
}

func multiQty(e Evaluation) bool {
	for _, l := range e.Order.Lines {
		if l.Quantity >= multiQtyThreshold {
			return true
		}
	}
	return false
}

func earlyBird(e Evaluation) bool {
	h := e.Order.CreatedAt.UTC().Hour()
	return h < earlyBirdBeforeHour || h >= earlyBirdFromHour
}

func familyOrder(e Evaluation) bool {
	return len(e.Order.categorySet()) >= familyCategoryCount
}

func vitaminFan(e Evaluation) bool {
	for _, l := range e.Order.Lines {
		if strings.Contains(strings.ToLower(l.CategoryName), vitaminCategoryToken) {
			return true
		}
	}
	return false
}

func promoHunter(e Evaluation) bool {
	for _, l := range e.Order.Lines {
		if l.HasPromotion {
			return true
		}
	}
	return false
}

func allTypes(e Evaluation) bool {
	if len(e.Order.AllCategoryIDs) == 0 {
		return false
	}
	touched := e.Order.categorySet()
	for _, id := range e.Order.AllCategoryIDs {
		if _, ok := touched[id]; !ok {
			return false
		}
	}
	return true
}

func loyalClient(e Evaluation) bool {
	return e.Order.OrdersThisWeek >= loyalOrdersPerWeek
}

func firstOrder(e Evaluation) bool {
	return !e.HasRecord
}

func bigSpender(e Evaluation) bool {
	return e.Order.Total.GreaterThanOrEqual(BigSpenderThreshold)
}

func (o OrderFacts) categorySet() map[uuid.UUID]struct{} {
	set := make(map[uuid.UUID]struct{}, len(o.Lines))
	for _, l := range o.Lines {
		if l.CategoryID != uuid.Nil {
			set[l.CategoryID] = struct{}{}
		}
	}
	return set
}
