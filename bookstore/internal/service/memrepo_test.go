package service_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/Astemirdum/bookstore/bookstore/internal/errs"
	"github.com/Astemirdum/bookstore/bookstore/internal/model"
	"github.com/Astemirdum/bookstore/bookstore/internal/repository"
	"github.com/Astemirdum/bookstore/pkg/kafka"
)

// memStore backs every repository interface with maps guarded by one mutex.
type memStore struct {
	mu         sync.Mutex
	authors    map[uuid.UUID]model.Author
	categories map[uuid.UUID]model.Category
	books      map[uuid.UUID]model.Book
	users      map[uuid.UUID]model.User
	cart       map[uuid.UUID]model.CartItem
}

func newMemStore() *memStore {
	return &memStore{
		authors:    map[uuid.UUID]model.Author{},
		categories: map[uuid.UUID]model.Category{},
		books:      map[uuid.UUID]model.Book{},
		users:      map[uuid.UUID]model.User{},
		cart:       map[uuid.UUID]model.CartItem{},
	}
}

func (m *memStore) repository() *repository.Repository {
	return &repository.Repository{
		Authors:    memAuthors{m},
		Categories: memCategories{m},
		Books:      memBooks{m},
		Users:      memUsers{m},
		Cart:       memCart{m},
	}
}

type memAuthors struct{ m *memStore }

func (r memAuthors) GetAll(ctx context.Context) ([]model.AuthorDetails, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var res []model.AuthorDetails
	for _, a := range r.m.authors {
		res = append(res, model.AuthorDetails{Author: a})
	}
	return res, nil
}

func (r memAuthors) GetByID(_ context.Context, id uuid.UUID) (model.AuthorDetails, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	a, ok := r.m.authors[id]
	if !ok {
		return model.AuthorDetails{}, errs.NotFound("author not found")
	}
	d := model.AuthorDetails{Author: a}
	for _, b := range r.m.books {
		if b.AuthorID == id {
			d.Books = append(d.Books, b)
		}
	}
	return d, nil
}

func (r memAuthors) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	_, ok := r.m.authors[id]
	return ok, nil
}

func (r memAuthors) Create(_ context.Context, a model.Author) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.authors[a.ID] = a
	return nil
}

func (r memAuthors) Update(_ context.Context, a model.Author) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.authors[a.ID]; !ok {
		return errs.NotFound("author not found")
	}
	r.m.authors[a.ID] = a
	return nil
}

// Delete mimics the on delete cascade of the schema.
func (r memAuthors) Delete(_ context.Context, id uuid.UUID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	delete(r.m.authors, id)
	for bid, b := range r.m.books {
		if b.AuthorID == id {
			r.m.deleteBookLocked(bid)
		}
	}
	return nil
}

func (m *memStore) deleteBookLocked(id uuid.UUID) {
	delete(m.books, id)
	for cid, c := range m.cart {
		if c.BookID == id {
			delete(m.cart, cid)
		}
	}
}

type memCategories struct{ m *memStore }

func (r memCategories) GetAll(context.Context) ([]model.CategoryDetails, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var res []model.CategoryDetails
	for _, c := range r.m.categories {
		res = append(res, model.CategoryDetails{Category: c})
	}
	return res, nil
}

func (r memCategories) GetByID(_ context.Context, id uuid.UUID) (model.CategoryDetails, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	c, ok := r.m.categories[id]
	if !ok {
		return model.CategoryDetails{}, errs.NotFound("category not found")
	}
	return model.CategoryDetails{Category: c}, nil
}

func (r memCategories) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	_, ok := r.m.categories[id]
	return ok, nil
}

func (r memCategories) Create(_ context.Context, c model.Category) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.categories[c.ID] = c
	return nil
}

func (r memCategories) Update(_ context.Context, c model.Category) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.categories[c.ID]; !ok {
		return errs.NotFound("category not found")
	}
	r.m.categories[c.ID] = c
	return nil
}

func (r memCategories) Delete(_ context.Context, id uuid.UUID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	delete(r.m.categories, id)
	for bid, b := range r.m.books {
		if b.CategoryID == id {
			r.m.deleteBookLocked(bid)
		}
	}
	return nil
}

type memBooks struct{ m *memStore }

func (r memBooks) details(b model.Book) model.BookDetails {
	return model.BookDetails{Book: b, Author: r.m.authors[b.AuthorID], Category: r.m.categories[b.CategoryID]}
}

func (r memBooks) GetAll(context.Context) ([]model.BookDetails, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var res []model.BookDetails
	for _, b := range r.m.books {
		res = append(res, r.details(b))
	}
	return res, nil
}

func (r memBooks) GetByID(_ context.Context, id uuid.UUID) (model.BookDetails, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	b, ok := r.m.books[id]
	if !ok {
		return model.BookDetails{}, errs.NotFound(fmt.Sprintf("book with id %s not found", id))
	}
	return r.details(b), nil
}

func (r memBooks) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	_, ok := r.m.books[id]
	return ok, nil
}

func (r memBooks) Create(_ context.Context, b model.Book) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.books[b.ID] = b
	return nil
}

func (r memBooks) Update(_ context.Context, b model.Book) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.books[b.ID]; !ok {
		return errs.NotFound("book not found")
	}
	r.m.books[b.ID] = b
	return nil
}

func (r memBooks) SetImage(_ context.Context, id uuid.UUID, imageURL *string) (*string, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	b, ok := r.m.books[id]
	if !ok {
		return nil, errs.NotFound("book not found")
	}
	prev := b.ImageURL
	b.ImageURL = imageURL
	r.m.books[id] = b
	return prev, nil
}

func (r memBooks) Delete(_ context.Context, id uuid.UUID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.deleteBookLocked(id)
	return nil
}

type memUsers struct{ m *memStore }

func (r memUsers) Any(context.Context) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return len(r.m.users) > 0, nil
}

func (r memUsers) ExistsByUsername(_ context.Context, username string) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r memUsers) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r memUsers) GetByUsername(_ context.Context, username string) (model.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return model.User{}, errs.NotFound("user not found")
}

func (r memUsers) Create(_ context.Context, u model.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.users[u.ID] = u
	return nil
}

type memCart struct{ m *memStore }

func (r memCart) Upsert(_ context.Context, item model.CartItem) (uuid.UUID, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.books[item.BookID]; !ok {
		return uuid.Nil, errs.NotFound("book not found")
	}
	for id, c := range r.m.cart {
		if c.UserID == item.UserID && c.BookID == item.BookID {
			c.Quantity += item.Quantity
			r.m.cart[id] = c
			return id, nil
		}
	}
	r.m.cart[item.ID] = item
	return item.ID, nil
}

func (r memCart) GetByID(_ context.Context, id uuid.UUID) (model.CartItem, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	c, ok := r.m.cart[id]
	if !ok {
		return model.CartItem{}, errs.NotFound(fmt.Sprintf("cart item with id %s not found", id))
	}
	return c, nil
}

func (r memCart) UpdateQuantity(_ context.Context, userID, id uuid.UUID, quantity int) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	c, ok := r.m.cart[id]
	if !ok || c.UserID != userID {
		return errs.NotFound("cart item not found")
	}
	c.Quantity = quantity
	r.m.cart[id] = c
	return nil
}

func (r memCart) Delete(_ context.Context, userID, id uuid.UUID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	c, ok := r.m.cart[id]
	if !ok || c.UserID != userID {
		return errs.NotFound("cart item not found")
	}
	delete(r.m.cart, id)
	return nil
}

func (r memCart) Clear(_ context.Context, userID uuid.UUID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for id, c := range r.m.cart {
		if c.UserID == userID {
			delete(r.m.cart, id)
		}
	}
	return nil
}

func (r memCart) List(_ context.Context, userID uuid.UUID) ([]model.CartLine, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var res []model.CartLine
	for _, c := range r.m.cart {
		if c.UserID != userID {
			continue
		}
		b := r.m.books[c.BookID]
		res = append(res, model.CartLine{
			CartItem:   c,
			BookTitle:  b.Title,
			BookPrice:  b.Price,
			AuthorName: r.m.authors[b.AuthorID].Name,
		})
	}
	sort.Slice(res, func(i, j int) bool { return res[i].DateAdded.After(res[j].DateAdded) })
	return res, nil
}

type recordedEvents struct {
	mu     sync.Mutex
	events []kafka.Event
}

func (r *recordedEvents) Publish(_ context.Context, e kafka.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordedEvents) types() []kafka.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := make([]kafka.EventType, 0, len(r.events))
	for _, e := range r.events {
		res = append(res, e.EventType)
	}
	return res
}

type memImages struct {
	mu    sync.Mutex
	files map[string][]byte
}

func newMemImages() *memImages {
	return &memImages{files: map[string][]byte{}}
}

func (s *memImages) Save(_ context.Context, filename string, content io.Reader) (string, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, content); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	url := "/images/books/" + uuid.NewString() + "-" + filename
	s.files[url] = buf.Bytes()
	return url, nil
}

func (s *memImages) Remove(url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, url)
	return nil
}

func (s *memImages) has(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.files[url]
	return ok
}
