// Package servicetest provides in-memory stores and a recording notifier for service and
// handler tests. The stores return the same sentinel errors as the Postgres repositories.
package servicetest

import (
	"bytes"
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"workshops/internal/models"
	"workshops/internal/notify"
	"workshops/internal/repository"
)

// DB holds every table. The typed views share one lock so cascades stay consistent.
type DB struct {
	mu        sync.Mutex
	users     map[string]models.User
	admins    map[string]models.Admin
	workshops map[string]models.Workshop
	reviews   []models.Review
	favorites []models.Favorite
	files     map[string]models.StoredFile
}

func NewDB() *DB {
	return &DB{
		users:     map[string]models.User{},
		admins:    map[string]models.Admin{},
		workshops: map[string]models.Workshop{},
		files:     map[string]models.StoredFile{},
	}
}

func (db *DB) Users() *Users             { return &Users{db: db} }
func (db *DB) Admins() *Admins           { return &Admins{db: db} }
func (db *DB) Workshops() *Workshops     { return &Workshops{db: db} }
func (db *DB) Reviews() *Reviews         { return &Reviews{db: db} }
func (db *DB) Favorites() *Favorites     { return &Favorites{db: db} }
func (db *DB) StoredFiles() *StoredFiles { return &StoredFiles{db: db} }

type Users struct{ db *DB }

func (u *Users) Create(_ context.Context, user models.User) error {
	u.db.mu.Lock()
	defer u.db.mu.Unlock()
	for _, existing := range u.db.users {
		if existing.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	u.db.users[user.ID] = user
	return nil
}

func (u *Users) FindByEmail(_ context.Context, email string) (models.User, error) {
	u.db.mu.Lock()
	defer u.db.mu.Unlock()
	for _, user := range u.db.users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, repository.ErrUserNotFound
}

func (u *Users) GetByID(_ context.Context, id string) (models.User, error) {
	u.db.mu.Lock()
	defer u.db.mu.Unlock()
	user, ok := u.db.users[id]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	return user, nil
}

func (u *Users) ListByStatus(_ context.Context, status models.UserStatus) ([]models.User, error) {
	u.db.mu.Lock()
	defer u.db.mu.Unlock()
	var out []models.User
	for _, user := range u.db.users {
		if user.Status == status {
			out = append(out, user)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (u *Users) UpdateStatus(_ context.Context, id string, status models.UserStatus) error {
	return u.mutate(id, func(user *models.User) { user.Status = status })
}

func (u *Users) UpdateAvatar(_ context.Context, id string, avatarURL string) error {
	return u.mutate(id, func(user *models.User) { user.AvatarURL = &avatarURL })
}

func (u *Users) SetResetCode(_ context.Context, id string, codeHash []byte, expiresAt time.Time) error {
	return u.mutate(id, func(user *models.User) {
		user.ResetCodeHash = codeHash
		user.ResetCodeExpiresAt = &expiresAt
	})
}

func (u *Users) UpdatePassword(_ context.Context, id string, passwordHash []byte) error {
	return u.mutate(id, func(user *models.User) {
		user.PasswordHash = passwordHash
		user.ResetCodeHash = nil
		user.ResetCodeExpiresAt = nil
	})
}

func (u *Users) ClearExpiredResetCodes(_ context.Context, now time.Time) (int64, error) {
	u.db.mu.Lock()
	defer u.db.mu.Unlock()
	var n int64
	for id, user := range u.db.users {
		if user.ResetCodeExpiresAt != nil && user.ResetCodeExpiresAt.Before(now) {
			user.ResetCodeHash = nil
			user.ResetCodeExpiresAt = nil
			u.db.users[id] = user
			n++
		}
	}
	return n, nil
}

func (u *Users) Delete(_ context.Context, id string) error {
	u.db.mu.Lock()
	defer u.db.mu.Unlock()
	if _, ok := u.db.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(u.db.users, id)
	u.db.reviews = filter(u.db.reviews, func(r models.Review) bool { return r.UserID != id })
	u.db.favorites = filter(u.db.favorites, func(f models.Favorite) bool { return f.UserID != id })
	return nil
}

func (u *Users) mutate(id string, fn func(*models.User)) error {
	u.db.mu.Lock()
	defer u.db.mu.Unlock()
	user, ok := u.db.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	fn(&user)
	u.db.users[id] = user
	return nil
}

type Admins struct{ db *DB }

func (a *Admins) Create(_ context.Context, admin models.Admin) error {
	a.db.mu.Lock()
	defer a.db.mu.Unlock()
	for _, existing := range a.db.admins {
		if existing.Email == admin.Email {
			return repository.ErrDuplicateEmail
		}
	}
	a.db.admins[admin.ID] = admin
	return nil
}

func (a *Admins) FindByEmail(_ context.Context, email string) (models.Admin, error) {
	a.db.mu.Lock()
	defer a.db.mu.Unlock()
	for _, admin := range a.db.admins {
		if admin.Email == email {
			return admin, nil
		}
	}
	return models.Admin{}, repository.ErrAdminNotFound
}

type Workshops struct{ db *DB }

func (w *Workshops) Create(_ context.Context, workshop models.Workshop) error {
	w.db.mu.Lock()
	defer w.db.mu.Unlock()
	w.db.workshops[workshop.ID] = workshop
	return nil
}

func (w *Workshops) Update(_ context.Context, workshop models.Workshop) error {
	w.db.mu.Lock()
	defer w.db.mu.Unlock()
	if _, ok := w.db.workshops[workshop.ID]; !ok {
		return repository.ErrWorkshopNotFound
	}
	w.db.workshops[workshop.ID] = workshop
	return nil
}

func (w *Workshops) GetByID(_ context.Context, id string) (models.Workshop, error) {
	w.db.mu.Lock()
	defer w.db.mu.Unlock()
	workshop, ok := w.db.workshops[id]
	if !ok {
		return models.Workshop{}, repository.ErrWorkshopNotFound
	}
	return workshop, nil
}

func (w *Workshops) List(_ context.Context) ([]models.Workshop, error) {
	w.db.mu.Lock()
	defer w.db.mu.Unlock()
	return w.db.sortedWorkshops(), nil
}

func (w *Workshops) ListNewest(_ context.Context, limit int) ([]models.Workshop, error) {
	w.db.mu.Lock()
	defer w.db.mu.Unlock()
	all := w.db.sortedWorkshops()
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (w *Workshops) Delete(_ context.Context, id string) error {
	w.db.mu.Lock()
	defer w.db.mu.Unlock()
	if _, ok := w.db.workshops[id]; !ok {
		return repository.ErrWorkshopNotFound
	}
	delete(w.db.workshops, id)
	w.db.reviews = filter(w.db.reviews, func(r models.Review) bool { return r.WorkshopID != id })
	w.db.favorites = filter(w.db.favorites, func(f models.Favorite) bool { return f.WorkshopID != id })
	return nil
}

// sortedWorkshops matches ORDER BY created_at DESC, id DESC.
func (db *DB) sortedWorkshops() []models.Workshop {
	out := make([]models.Workshop, 0, len(db.workshops))
	for _, w := range db.workshops {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

// checkParents mirrors the user_id and workshop_id foreign keys. Callers hold db.mu.
func (db *DB) checkParents(userID, workshopID string) error {
	if _, ok := db.users[userID]; !ok {
		return repository.ErrUserNotFound
	}
	if _, ok := db.workshops[workshopID]; !ok {
		return repository.ErrWorkshopNotFound
	}
	return nil
}

type Reviews struct{ db *DB }

// Save upserts on the (user, workshop) pair like the unique index does.
func (r *Reviews) Save(_ context.Context, review models.Review) (models.Review, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.checkParents(review.UserID, review.WorkshopID); err != nil {
		return models.Review{}, err
	}
	for i, existing := range r.db.reviews {
		if existing.UserID == review.UserID && existing.WorkshopID == review.WorkshopID {
			existing.Stars = review.Stars
			existing.Text = review.Text
			existing.UpdatedAt = review.UpdatedAt
			r.db.reviews[i] = existing
			return existing, nil
		}
	}
	r.db.reviews = append(r.db.reviews, review)
	return review, nil
}

func (r *Reviews) GetByID(_ context.Context, id string) (models.Review, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, review := range r.db.reviews {
		if review.ID == id {
			return review, nil
		}
	}
	return models.Review{}, repository.ErrReviewNotFound
}

func (r *Reviews) FindByUserAndWorkshop(_ context.Context, userID, workshopID string) (models.Review, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, review := range r.db.reviews {
		if review.UserID == userID && review.WorkshopID == workshopID {
			return review, nil
		}
	}
	return models.Review{}, repository.ErrReviewNotFound
}

func (r *Reviews) ListByWorkshop(_ context.Context, workshopID string) ([]models.Review, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := filter(r.db.reviews, func(review models.Review) bool { return review.WorkshopID == workshopID })
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *Reviews) AverageForWorkshop(ctx context.Context, workshopID string) (float64, error) {
	reviews, _ := r.ListByWorkshop(ctx, workshopID)
	if len(reviews) == 0 {
		return 0, nil
	}
	var sum int
	for _, review := range reviews {
		sum += review.Stars
	}
	return float64(sum) / float64(len(reviews)), nil
}

func (r *Reviews) CountForWorkshop(ctx context.Context, workshopID string) (int, error) {
	reviews, _ := r.ListByWorkshop(ctx, workshopID)
	return len(reviews), nil
}

func (r *Reviews) SetAdminResponse(_ context.Context, id string, response string, respondedAt time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for i, review := range r.db.reviews {
		if review.ID == id {
			review.AdminResponseText = &response
			review.AdminRespondedAt = &respondedAt
			r.db.reviews[i] = review
			return nil
		}
	}
	return repository.ErrReviewNotFound
}

// Len reports how many review rows exist.
func (r *Reviews) Len() int {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return len(r.db.reviews)
}

type Favorites struct{ db *DB }

func (f *Favorites) Create(ctx context.Context, favorite models.Favorite) (models.Favorite, error) {
	f.db.mu.Lock()
	if err := f.db.checkParents(favorite.UserID, favorite.WorkshopID); err != nil {
		f.db.mu.Unlock()
		return models.Favorite{}, err
	}
	exists := false
	for _, existing := range f.db.favorites {
		if existing.UserID == favorite.UserID && existing.WorkshopID == favorite.WorkshopID {
			exists = true
			break
		}
	}
	if !exists {
		f.db.favorites = append(f.db.favorites, favorite)
	}
	f.db.mu.Unlock()
	return f.Find(ctx, favorite.UserID, favorite.WorkshopID)
}

func (f *Favorites) Find(_ context.Context, userID, workshopID string) (models.Favorite, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, favorite := range f.db.favorites {
		if favorite.UserID == userID && favorite.WorkshopID == workshopID {
			return favorite, nil
		}
	}
	return models.Favorite{}, repository.ErrFavoriteNotFound
}

func (f *Favorites) Delete(_ context.Context, userID, workshopID string) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	before := len(f.db.favorites)
	f.db.favorites = filter(f.db.favorites, func(fav models.Favorite) bool {
		return fav.UserID != userID || fav.WorkshopID != workshopID
	})
	if len(f.db.favorites) == before {
		return repository.ErrFavoriteNotFound
	}
	return nil
}

func (f *Favorites) ListByUser(_ context.Context, userID string) ([]models.Favorite, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []models.Favorite
	for i := len(f.db.favorites) - 1; i >= 0; i-- {
		favorite := f.db.favorites[i]
		if favorite.UserID != userID {
			continue
		}
		if w, ok := f.db.workshops[favorite.WorkshopID]; ok {
			favorite.Workshop = &w
		}
		out = append(out, favorite)
	}
	return out, nil
}

// Len reports how many favorite rows exist.
func (f *Favorites) Len() int {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	return len(f.db.favorites)
}

type StoredFiles struct{ db *DB }

func (s *StoredFiles) Create(_ context.Context, file models.StoredFile) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.files[file.ID] = file
	return nil
}

func (s *StoredFiles) GetByID(_ context.Context, id string) (models.StoredFile, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	file, ok := s.db.files[id]
	if !ok {
		return models.StoredFile{}, repository.ErrStoredFileNotFound
	}
	return file, nil
}

// Notifier records every message it is handed. When Err is set Notify records the
// message and then fails with Err.
type Notifier struct {
	mu       sync.Mutex
	Err      error
	messages []notify.Message
}

func (n *Notifier) Notify(_ context.Context, msg notify.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, msg)
	return n.Err
}

func (n *Notifier) Messages() []notify.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notify.Message(nil), n.messages...)
}

func (n *Notifier) ByKind(kind notify.Kind) []notify.Message {
	var out []notify.Message
	for _, msg := range n.Messages() {
		if msg.Kind == kind {
			out = append(out, msg)
		}
	}
	return out
}

// Upload is a form file backed by an in-memory payload.
type Upload struct {
	Name string
	Data []byte
}

func (u Upload) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(u.Data)), nil
}

func filter[T any](in []T, keep func(T) bool) []T {
	out := make([]T, 0, len(in))
	for _, v := range in {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}
