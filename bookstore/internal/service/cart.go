package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/bookstore/bookstore/internal/errs"
	"github.com/Astemirdum/bookstore/bookstore/internal/model"
	"github.com/Astemirdum/bookstore/bookstore/internal/repository"
	"github.com/Astemirdum/bookstore/pkg/kafka"
)

type CartService struct {
	cart   repository.CartRepository
	books  repository.BookRepository
	events EventPublisher
	log    *zap.Logger
	now    func() time.Time
}

func NewCartService(repo *repository.Repository, events EventPublisher, log *zap.Logger) *CartService {
	return &CartService{
		cart:   repo.Cart,
		books:  repo.Books,
		events: events,
		log:    log.Named("cart"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// AddToCart adds quantity of a book to the user's cart, merging with an existing row.
func (s *CartService) AddToCart(ctx context.Context, userID, bookID uuid.UUID, quantity int) (uuid.UUID, error) {
	item, err := model.NewCartItem(uuid.New(), userID, bookID, quantity, s.now())
	if err != nil {
		return uuid.Nil, err
	}
	ok, err := s.books.Exists(ctx, bookID)
	if err != nil {
		return uuid.Nil, errors.Wrap(err, "books.Exists")
	}
	if !ok {
		return uuid.Nil, errs.NotFound(fmt.Sprintf("book with id %s not found", bookID))
	}
	id, err := s.cart.Upsert(ctx, item)
	if err != nil {
		return uuid.Nil, err
	}
	publish(ctx, s.events, s.log, kafka.Event{
		EventType: kafka.CartItemAdded, UserID: userID.String(), BookID: bookID.String(), Quantity: quantity,
	})
	return id, nil
}

func (s *CartService) UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) error {
	item, err := s.owned(ctx, userID, itemID)
	if err != nil {
		return err
	}
	if quantity <= 0 {
		return errs.Validation("quantity must be greater than zero")
	}
	if err = s.cart.UpdateQuantity(ctx, userID, itemID, quantity); err != nil {
		return err
	}
	publish(ctx, s.events, s.log, kafka.Event{
		EventType: kafka.CartItemUpdated, UserID: userID.String(), BookID: item.BookID.String(), Quantity: quantity,
	})
	return nil
}

func (s *CartService) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) error {
	item, err := s.owned(ctx, userID, itemID)
	if err != nil {
		return err
	}
	if err = s.cart.Delete(ctx, userID, itemID); err != nil {
		return err
	}
	publish(ctx, s.events, s.log, kafka.Event{
		EventType: kafka.CartItemRemoved, UserID: userID.String(), BookID: item.BookID.String(),
	})
	return nil
}

func (s *CartService) Clear(ctx context.Context, userID uuid.UUID) error {
	if err := s.cart.Clear(ctx, userID); err != nil {
		return err
	}
	publish(ctx, s.events, s.log, kafka.Event{EventType: kafka.CartCleared, UserID: userID.String()})
	return nil
}

// ListItems returns the user's cart, newest first.
func (s *CartService) ListItems(ctx context.Context, userID uuid.UUID) ([]model.CartLine, error) {
	return s.cart.List(ctx, userID)
}

func (s *CartService) owned(ctx context.Context, userID, itemID uuid.UUID) (model.CartItem, error) {
	item, err := s.cart.GetByID(ctx, itemID)
	if err != nil {
		return model.CartItem{}, err
	}
	if item.UserID != userID {
		return model.CartItem{}, errs.Forbidden("cart item belongs to another user")
	}
	return item, nil
}
