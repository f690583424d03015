package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Astemirdum/bookstore/bookstore/internal/errs"
	"github.com/Astemirdum/bookstore/bookstore/internal/model"
)

func TestHandler_Authors(t *testing.T) {
	t.Parallel()
	e, svc := newRouter(t)

	svc.authors.EXPECT().GetAll(context.Background()).Return([]model.AuthorDetails{{
		Author: model.Author{ID: authorID, Name: "Frank", Surname: "Herbert"},
		Books:  []model.Book{dune().Book},
	}}, nil)
	rec := doJSON(e, http.MethodGet, "/Authors", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `[{"id":"83575e12-7ce0-48ee-9931-51919ff3c9ee","name":"Frank","surname":"Herbert","books":[`+
		`{"id":"f7cdc58f-2caf-4b15-9727-f89dcc629b27","title":"Dune","description":"Spice","price":12.5,`+
		`"authorId":"83575e12-7ce0-48ee-9931-51919ff3c9ee","categoryId":"0f4d9a6e-3d1b-4c63-8a57-36d0f0c1b2a4",`+
		`"imageUrl":"/images/books/dune.png"}]}]`, rec.Body.String())

	svc.authors.EXPECT().GetByID(context.Background(), authorID).
		Return(model.AuthorDetails{Author: model.Author{ID: authorID, Name: "Frank"}}, nil)
	rec = doJSON(e, http.MethodGet, "/authors/"+authorID.String(), "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"id":"83575e12-7ce0-48ee-9931-51919ff3c9ee","name":"Frank","surname":"","books":[]}`, rec.Body.String())

	svc.authors.EXPECT().Create(gomock.Any(), model.AuthorRequest{Name: "Ursula", Surname: "Le Guin"}).Return(authorID, nil)
	rec = doJSON(e, http.MethodPost, "/Authors", adminToken, `{"name":"Ursula","surname":"Le Guin"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `"83575e12-7ce0-48ee-9931-51919ff3c9ee"`, rec.Body.String())

	svc.authors.EXPECT().Create(gomock.Any(), model.AuthorRequest{}).
		Return(uuid.Nil, errs.Validation("name cannot be empty or longer than 250 symbols"))
	rec = doJSON(e, http.MethodPost, "/Authors", adminToken, `{}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.JSONEq(t, `{"status":400,"title":"name cannot be empty or longer than 250 symbols","traceId":"test-trace"}`, rec.Body.String())

	missing := uuid.New()
	svc.authors.EXPECT().Update(gomock.Any(), missing, gomock.Any()).
		Return(uuid.Nil, errs.NotFound("author with id "+missing.String()+" not found"))
	rec = doJSON(e, http.MethodPut, "/Authors/"+missing.String(), adminToken, `{"name":"X"}`)
	require.Equal(t, http.StatusNotFound, rec.Code)

	svc.authors.EXPECT().Delete(gomock.Any(), missing).Return(missing, nil)
	rec = doJSON(e, http.MethodDelete, "/Authors/"+missing.String(), adminToken, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(e, http.MethodDelete, "/Authors/"+missing.String(), userToken, "")
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHandler_Categories(t *testing.T) {
	t.Parallel()
	e, svc := newRouter(t)

	svc.categories.EXPECT().GetAll(context.Background()).Return(nil, nil)
	rec := doJSON(e, http.MethodGet, "/Categories", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `[]`, rec.Body.String())

	svc.categories.EXPECT().GetByID(context.Background(), categoryID).Return(model.CategoryDetails{
		Category: model.Category{ID: categoryID, Name: "Sci-Fi", Description: "space"},
	}, nil)
	rec = doJSON(e, http.MethodGet, "/Categories/"+categoryID.String(), "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"id":"0f4d9a6e-3d1b-4c63-8a57-36d0f0c1b2a4","name":"Sci-Fi","description":"space","books":[]}`, rec.Body.String())

	svc.categories.EXPECT().Create(gomock.Any(), model.CategoryRequest{Name: "Poetry"}).Return(categoryID, nil)
	rec = doJSON(e, http.MethodPost, "/Categories", adminToken, `{"name":"Poetry"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(e, http.MethodPost, "/Categories", userToken, `{"name":"Poetry"}`)
	require.Equal(t, http.StatusForbidden, rec.Code)

	svc.categories.EXPECT().Update(gomock.Any(), categoryID, model.CategoryRequest{Name: "Prose"}).Return(categoryID, nil)
	rec = doJSON(e, http.MethodPut, "/Categories/"+categoryID.String(), adminToken, `{"name":"Prose"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	svc.categories.EXPECT().Delete(gomock.Any(), categoryID).Return(categoryID, nil)
	rec = doJSON(e, http.MethodDelete, "/Categories/"+categoryID.String(), adminToken, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `"0f4d9a6e-3d1b-4c63-8a57-36d0f0c1b2a4"`, rec.Body.String())
}
