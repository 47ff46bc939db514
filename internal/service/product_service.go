package service

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"eie-registry/internal/model"
	"eie-registry/internal/repository"
	"eie-registry/internal/workflow"
	"eie-registry/internal/ws"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const maxMotivationLength = 200

type ProductService interface {
	List(filter repository.ProductFilter, actor Actor) (model.Page[model.Product], error)
	Get(gtin string, actor Actor) (*ProductDetail, error)
	History(gtin string, actor Actor) ([]model.ProductStatusHistory, error)
	ChangeStatus(req StatusChangeRequest, actor Actor) (*StatusChangeResult, error)
}

// ProductDetail is a product with its review trail and the actions the
// caller may take on it next.
type ProductDetail struct {
	model.Product
	History          []model.ProductStatusHistory `json:"history"`
	AvailableActions []workflow.Action            `json:"available_actions"`
}

type StatusChangeRequest struct {
	Action        string   `json:"-"`
	GtinCodes     []string `json:"gtin_codes"`
	CurrentStatus string   `json:"current_status,omitempty"`
	Motivation    string   `json:"motivation"`
}

type StatusChangeResult struct {
	Updated    int                 `json:"updated"`
	Status     model.ProductStatus `json:"status"`
	MessageKey string              `json:"message_key"`
}

type productService struct {
	productRepo repository.ProductRepository
	historyRepo repository.StatusHistoryRepository
	outboxRepo  repository.OutboxRepository
	db          *gorm.DB
	wsHub       *ws.Hub
	logger      zerolog.Logger
}

func NewProductService(
	productRepo repository.ProductRepository,
	historyRepo repository.StatusHistoryRepository,
	outboxRepo repository.OutboxRepository,
	db *gorm.DB,
	hub *ws.Hub,
	logger zerolog.Logger,
) ProductService {
	return &productService{
		productRepo: productRepo,
		historyRepo: historyRepo,
		outboxRepo:  outboxRepo,
		db:          db,
		wsHub:       hub,
		logger:      logger.With().Str("service", "product").Logger(),
	}
}

// List forces producers onto their own organization; reviewers may narrow
// by organization_id.
func (s *productService) List(filter repository.ProductFilter, actor Actor) (model.Page[model.Product], error) {
	if scope := actor.Scope(model.PrivProductViewAll); scope != nil {
		filter.OrganizationID = scope
	}
	filter.Page, filter.Size = repository.NormalizePage(filter.Page, filter.Size)

	products, total, err := s.productRepo.List(filter)
	if err != nil {
		return model.Page[model.Product]{}, err
	}
	return model.NewPage(products, filter.Page, filter.Size, total), nil
}

func (s *productService) Get(gtin string, actor Actor) (*ProductDetail, error) {
	product, err := s.find(gtin, actor)
	if err != nil {
		return nil, err
	}
	history, err := s.historyRepo.FindByProductID(product.ID)
	if err != nil {
		return nil, err
	}

	actions := workflow.AvailableActions(actor.Role, product.Status)
	if actions == nil {
		actions = []workflow.Action{}
	}
	if history == nil {
		history = []model.ProductStatusHistory{}
	}
	return &ProductDetail{Product: *product, History: history, AvailableActions: actions}, nil
}

func (s *productService) History(gtin string, actor Actor) ([]model.ProductStatusHistory, error) {
	product, err := s.find(gtin, actor)
	if err != nil {
		return nil, err
	}
	return s.historyRepo.FindByProductID(product.ID)
}

func (s *productService) find(gtin string, actor Actor) (*model.Product, error) {
	product, err := s.productRepo.FindByGTIN(gtin)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	if !actor.Sees(model.PrivProductViewAll, product.OrganizationID) {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// ChangeStatus applies one reviewer action to every selected product, or to
// none of them.
func (s *productService) ChangeStatus(req StatusChangeRequest, actor Actor) (*StatusChangeResult, error) {
	action, err := workflow.ParseAction(req.Action)
	if err != nil {
		return nil, err
	}
	rule := action.Rule()

	motivation := strings.TrimSpace(req.Motivation)
	if utf8.RuneCountInString(motivation) > maxMotivationLength {
		return nil, ErrMotivationTooLong
	}
	if err := workflow.Authorize(action, actor.Role, motivation); err != nil {
		return nil, err
	}
	if !actor.Can(rule.Privilege) {
		return nil, fmt.Errorf("%w: requires %s", workflow.ErrForbiddenAction, rule.Privilege)
	}

	gtins := uniqueCodes(req.GtinCodes)
	if len(gtins) == 0 {
		return nil, ErrNoProducts
	}

	var current model.ProductStatus
	if req.CurrentStatus != "" {
		current = model.ProductStatus(req.CurrentStatus)
		if !current.Valid() {
			return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, req.CurrentStatus)
		}
	}

	var changed []model.ProductStatusHistory
	err = s.db.Transaction(func(tx *gorm.DB) error {
		products, err := s.productRepo.FindByGTINs(tx, gtins)
		if err != nil {
			return err
		}

		byGTIN := make(map[string]model.Product, len(products))
		for _, p := range products {
			byGTIN[p.GtinCode] = p
		}

		var offending []string
		for _, gtin := range gtins {
			p, ok := byGTIN[gtin]
			switch {
			case !ok, !actor.Sees(model.PrivProductViewAll, p.OrganizationID):
				offending = append(offending, gtin)
			case current != "" && p.Status != current:
				offending = append(offending, gtin)
			case !rule.AllowsFrom(p.Status):
				offending = append(offending, gtin)
			}
		}
		if len(offending) > 0 {
			return &ConflictError{GtinCodes: offending}
		}

		now := time.Now()
		events := make([]*model.OutboxEvent, 0, len(gtins))
		for _, gtin := range gtins {
			p := byGTIN[gtin]
			ok, err := s.productRepo.UpdateStatusIf(tx, p.ID, p.Status, rule.To, motivation, actor.UserID.String())
			if err != nil {
				return err
			}
			if !ok {
				// changed by someone else since it was read
				return &ConflictError{GtinCodes: []string{gtin}}
			}

			changed = append(changed, model.ProductStatusHistory{
				ProductID:  p.ID,
				GtinCode:   p.GtinCode,
				Action:     string(action),
				FromStatus: p.Status,
				ToStatus:   rule.To,
				Motivation: motivation,
				ActorID:    actor.UserID.String(),
				ActorName:  actor.Name,
				ActorRole:  actor.Role,
			})

			ev, err := model.ProductStatusChanged{
				EventID:        uuid.New(),
				ProductID:      p.ID,
				GtinCode:       p.GtinCode,
				OrganizationID: p.OrganizationID,
				Action:         string(action),
				From:           p.Status,
				To:             rule.To,
				Motivation:     motivation,
				ActorID:        actor.UserID.String(),
				OccurredAt:     now,
			}.ToOutbox()
			if err != nil {
				return err
			}
			events = append(events, ev)
		}

		if err := s.historyRepo.Create(tx, changed); err != nil {
			return err
		}
		return s.outboxRepo.Add(tx, events)
	})
	if err != nil {
		s.logger.Warn().Err(err).
			Str("action", string(action)).
			Str("user_id", actor.UserID.String()).
			Int("products", len(gtins)).
			Msg("status change refused")
		return nil, err
	}

	prior := make([]model.ProductStatus, len(changed))
	for i, h := range changed {
		prior[i] = h.FromStatus
	}

	s.logger.Info().
		Str("action", string(action)).
		Str("to", string(rule.To)).
		Str("user_id", actor.UserID.String()).
		Int("products", len(changed)).
		Msg("product status changed")

	s.wsHub.Publish(ws.EventProductStatusChanged, map[string]interface{}{
		"action":     string(action),
		"status":     rule.To,
		"gtin_codes": gtins,
		"user": map[string]interface{}{
			"id":   actor.UserID,
			"name": actor.Name,
		},
	})

	return &StatusChangeResult{
		Updated:    len(changed),
		Status:     rule.To,
		MessageKey: workflow.SuccessMessageKey(action, actor.Role, prior),
	}, nil
}

func uniqueCodes(codes []string) []string {
	seen := make(map[string]bool, len(codes))
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		c = strings.TrimSpace(c)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}
