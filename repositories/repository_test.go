package repositories

import (
	"context"
	"errors"
	"testing"

	"bookstore/models"
	"bookstore/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func TestRepositoryCRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewBookRepository(testutil.OpenDB(t))

	book := &models.Book{Title: "Dune", Price: 9.99, Currency: "USD", Category: models.CategoryBook}
	require.NoError(t, repo.Create(ctx, book))
	require.NotZero(t, book.ID)

	found, err := repo.FindByID(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dune", found.Title)

	found.Title = "Dune Messiah"
	require.NoError(t, repo.Update(ctx, found))

	again, err := repo.FindByID(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dune Messiah", again.Title)

	require.NoError(t, repo.Delete(ctx, book.ID))
	_, err = repo.FindByID(ctx, book.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryDeleteMissingIsNotFound(t *testing.T) {
	ctx := context.Background()
	repo := NewAuthorRepository(testutil.OpenDB(t))

	assert.ErrorIs(t, repo.Delete(ctx, 404), gorm.ErrRecordNotFound)

	author := &models.Author{Name: "Frank Herbert"}
	require.NoError(t, repo.Create(ctx, author))
	require.NoError(t, repo.Delete(ctx, author.ID))
	assert.ErrorIs(t, repo.Delete(ctx, author.ID), gorm.ErrRecordNotFound)
}

func TestRepositoryFindAllPaginates(t *testing.T) {
	ctx := context.Background()
	repo := NewAuthorRepository(testutil.OpenDB(t))
	for _, name := range []string{"A", "B", "C", "D", "E"} {
		require.NoError(t, repo.Create(ctx, &models.Author{Name: name}))
	}

	page, total, err := repo.FindAll(ctx, 2, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	require.Len(t, page, 2)
	assert.Equal(t, "C", page[0].Name)
	assert.Equal(t, "D", page[1].Name)

	matches, total, err := repo.Search(ctx, "E", 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "E", matches[0].Name)
}

func TestUserRepositoryLoadsRoles(t *testing.T) {
	ctx := context.Background()
	db := testutil.OpenDB(t)
	users := NewUserRepository(db)
	roles := NewRoleRepository(db)

	admin, err := users.FindByEmail(ctx, testutil.AdminEmail)
	require.NoError(t, err)
	assert.True(t, admin.HasRole(models.RoleAdmin))

	user := &models.User{UserName: "reader", Email: "reader@example.com", Password: "x"}
	require.NoError(t, users.Create(ctx, user))
	client, err := roles.FindByName(ctx, models.RoleClient)
	require.NoError(t, err)
	require.NoError(t, users.AssignRole(ctx, user, client))

	byName, err := users.FindByUserName(ctx, "reader")
	require.NoError(t, err)
	assert.Equal(t, []string{models.RoleClient}, byName.RoleNames())

	list, total, err := users.FindAll(ctx, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, list, 2)

	dup := &models.User{UserName: "reader", Email: "other@example.com", Password: "x"}
	assert.ErrorIs(t, users.Create(ctx, dup), gorm.ErrDuplicatedKey)
}

func TestUserTakenSeesDeletedUsers(t *testing.T) {
	ctx := context.Background()
	users := NewUserRepository(testutil.OpenDB(t))

	user := &models.User{UserName: "gone", Email: "gone@example.com", Password: "x"}
	require.NoError(t, users.Create(ctx, user))
	require.NoError(t, users.Delete(ctx, user.ID))

	_, err := users.FindByEmail(ctx, "gone@example.com")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	taken, err := users.EmailTaken(ctx, "gone@example.com", 0)
	require.NoError(t, err)
	assert.True(t, taken)
	taken, err = users.UserNameTaken(ctx, "gone", 0)
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = users.EmailTaken(ctx, "gone@example.com", user.ID)
	require.NoError(t, err)
	assert.False(t, taken)
	taken, err = users.UserNameTaken(ctx, "fresh", 0)
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestRolePermissions(t *testing.T) {
	ctx := context.Background()
	store := NewStore(testutil.OpenDB(t))
	admin, err := store.Users.FindByEmail(ctx, testutil.AdminEmail)
	require.NoError(t, err)

	perms, err := store.Roles.PermissionsForUser(ctx, admin.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		models.PermBooksWrite, models.PermAuthorsWrite, models.PermUsersList, models.PermUsersManage,
	}, perms)

	reader := &models.User{UserName: "reader", Email: "reader@example.com", Password: "x"}
	require.NoError(t, store.Users.Create(ctx, reader))
	client, err := store.Roles.FindByName(ctx, models.RoleClient)
	require.NoError(t, err)
	require.NoError(t, store.Users.AssignRole(ctx, reader, client))
	perms, err = store.Roles.PermissionsForUser(ctx, reader.ID)
	require.NoError(t, err)
	assert.Empty(t, perms)

	require.NoError(t, store.Users.Delete(ctx, admin.ID))
	perms, err = store.Roles.PermissionsForUser(ctx, admin.ID)
	require.NoError(t, err)
	assert.Empty(t, perms, "a deleted user keeps no permissions")
}

func TestAuthorInBookRepository(t *testing.T) {
	ctx := context.Background()
	store := NewStore(testutil.OpenDB(t))

	book := &models.Book{Title: "Good Omens"}
	require.NoError(t, store.Books.Create(ctx, book))
	pratchett := &models.Author{Name: "Terry Pratchett"}
	gaiman := &models.Author{Name: "Neil Gaiman"}
	require.NoError(t, store.Authors.Create(ctx, pratchett))
	require.NoError(t, store.Authors.Create(ctx, gaiman))

	require.NoError(t, store.AuthorInBooks.Create(ctx, &models.AuthorInBook{AuthorID: pratchett.ID, BookID: book.ID}))
	require.NoError(t, store.AuthorInBooks.Create(ctx, &models.AuthorInBook{AuthorID: gaiman.ID, BookID: book.ID}))

	ok, err := store.AuthorInBooks.Exists(ctx, gaiman.ID, book.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	authors, err := store.AuthorInBooks.AuthorsOfBook(ctx, book.ID)
	require.NoError(t, err)
	assert.Len(t, authors, 2)

	books, err := store.AuthorInBooks.BooksOfAuthor(ctx, gaiman.ID)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "Good Omens", books[0].Title)

	links, total, err := store.AuthorInBooks.FindAll(ctx, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, links, 2)

	require.NoError(t, store.AuthorInBooks.Unlink(ctx, gaiman.ID, book.ID))
	assert.ErrorIs(t, store.AuthorInBooks.Unlink(ctx, gaiman.ID, book.ID), gorm.ErrRecordNotFound)
}

func TestAuthorInBookRejectsDanglingKeys(t *testing.T) {
	ctx := context.Background()
	store := NewStore(testutil.OpenDB(t))

	err := store.AuthorInBooks.Create(ctx, &models.AuthorInBook{AuthorID: 77, BookID: 88})
	assert.Error(t, err, "foreign keys are enforced by the store")
}

func TestStoreTransactionRollsBack(t *testing.T) {
	ctx := context.Background()
	store := NewStore(testutil.OpenDB(t))
	boom := errors.New("boom")

	err := store.Transaction(ctx, func(tx *Store) error {
		if err := tx.Authors.Create(ctx, &models.Author{Name: "Ghost"}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, total, err := store.Authors.FindAll(ctx, 1, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestRepositorySurfacesStoreErrors(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{})
	require.NoError(t, err)

	storeErr := errors.New("connection reset")
	mock.ExpectQuery("SELECT .* FROM `books`").WillReturnError(storeErr)

	_, err = NewBookRepository(db).FindByID(context.Background(), 1)
	assert.ErrorIs(t, err, storeErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}
