package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/emre/gatherly/internal/app/lifecycle"
	"github.com/emre/gatherly/internal/app/models"
	"github.com/emre/gatherly/internal/app/models/dto"
	"github.com/emre/gatherly/internal/pkg/apperrors"
)

// memStore backs the fake store implementations. Admit runs its
// check-and-write under the store mutex, which gives it the same
// serialization the database row lock provides.
type memStore struct {
	mu          sync.Mutex
	nextID      int64
	activities  map[int64]*models.Activity
	images      map[int64][]string
	enrollments map[int64]map[int64]*models.Enrollment
	categories  map[int64]*models.Category
	users       map[int64]*models.User
	tokens      map[string]*models.RefreshToken
	comments    []*models.Comment
}

func newMemStore() *memStore {
	return &memStore{
		activities:  make(map[int64]*models.Activity),
		images:      make(map[int64][]string),
		enrollments: make(map[int64]map[int64]*models.Enrollment),
		categories:  make(map[int64]*models.Category),
		users:       make(map[int64]*models.User),
		tokens:      make(map[string]*models.RefreshToken),
	}
}

func (m *memStore) idLocked() int64 {
	m.nextID++
	return m.nextID
}

func (m *memStore) addUser(username string) *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := &models.User{ID: m.idLocked(), Username: username, Email: username + "@example.com", Role: models.RoleUser}
	m.users[u.ID] = u
	return u
}

func (m *memStore) addCategory(name string) *models.Category {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := &models.Category{ID: m.idLocked(), Name: name}
	m.categories[c.ID] = c
	return c
}

func (m *memStore) addActivity(a models.Activity) *models.Activity {
	m.mu.Lock()
	defer m.mu.Unlock()
	a.ID = m.idLocked()
	if a.Organizer == nil {
		a.Organizer = m.users[a.OrganizerID]
	}
	if a.Category == nil {
		a.Category = m.categories[a.CategoryID]
	}
	stored := a
	m.activities[a.ID] = &stored
	return &a
}

func (m *memStore) addEnrollment(activityID, userID int64, status models.EnrollmentStatus) *models.Enrollment {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.enrollments[activityID] == nil {
		m.enrollments[activityID] = make(map[int64]*models.Enrollment)
	}
	e := &models.Enrollment{
		ID:         m.idLocked(),
		ActivityID: activityID,
		UserID:     userID,
		Status:     status,
		EnrollTime: time.Now(),
	}
	m.enrollments[activityID][userID] = e
	return e
}

func (m *memStore) countEnrolledLocked(activityID int64) int {
	count := 0
	for _, e := range m.enrollments[activityID] {
		if e.Status == models.EnrollmentEnrolled {
			count++
		}
	}
	return count
}

func copyActivity(a *models.Activity) *models.Activity {
	c := *a
	return &c
}

// fakeActivityStore implements ActivityStore over a memStore
type fakeActivityStore struct{ s *memStore }

func (f *fakeActivityStore) Create(_ context.Context, activity *models.Activity, imageURLs []string) (int64, error) {
	m := f.s
	m.mu.Lock()
	defer m.mu.Unlock()
	activity.ID = m.idLocked()
	stored := *activity
	stored.Organizer = m.users[activity.OrganizerID]
	stored.Category = m.categories[activity.CategoryID]
	m.activities[activity.ID] = &stored
	m.images[activity.ID] = imageURLs
	return activity.ID, nil
}

func (f *fakeActivityStore) GetByID(_ context.Context, id int64) (*models.Activity, error) {
	m := f.s
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.activities[id]
	if !ok {
		return nil, apperrors.ErrActivityNotFound
	}
	return copyActivity(a), nil
}

func (f *fakeActivityStore) Update(_ context.Context, activity *models.Activity) error {
	m := f.s
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.activities[activity.ID]
	if !ok {
		return apperrors.ErrActivityNotFound
	}
	// Same check-and-write unit the repository runs under its row lock.
	if activity.MaxParticipants < m.countEnrolledLocked(activity.ID) {
		return apperrors.NewBadRequestError("max participants cannot be lower than the current enrolled count")
	}
	updated := *activity
	updated.Organizer = stored.Organizer
	updated.Category = m.categories[activity.CategoryID]
	m.activities[activity.ID] = &updated
	return nil
}

func (f *fakeActivityStore) UpdateStatus(_ context.Context, id int64, status models.ActivityStatus) error {
	m := f.s
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.activities[id]
	if !ok {
		return apperrors.ErrActivityNotFound
	}
	a.Status = status
	return nil
}

func (f *fakeActivityStore) Delete(_ context.Context, id int64) error {
	m := f.s
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.activities[id]; !ok {
		return apperrors.ErrActivityNotFound
	}
	delete(m.activities, id)
	delete(m.images, id)
	delete(m.enrollments, id)
	return nil
}

func (f *fakeActivityStore) ReplaceImages(_ context.Context, activityID int64, imageURLs []string) error {
	m := f.s
	m.mu.Lock()
	defer m.mu.Unlock()
	m.images[activityID] = imageURLs
	return nil
}

func (f *fakeActivityStore) list(filter func(*models.Activity) bool, q dto.ActivityQuery) ([]*models.Activity, int64, error) {
	m := f.s
	m.mu.Lock()
	defer m.mu.Unlock()

	var all []*models.Activity
	for id := int64(1); id <= m.nextID; id++ {
		a, ok := m.activities[id]
		if !ok || !filter(a) {
			continue
		}
		if q.Status != nil && a.Status != *q.Status {
			continue
		}
		if q.CategoryID != nil && a.CategoryID != *q.CategoryID {
			continue
		}
		all = append(all, copyActivity(a))
	}

	total := int64(len(all))
	start := (q.Page - 1) * q.PageSize
	if start >= len(all) {
		return nil, total, nil
	}
	end := start + q.PageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (f *fakeActivityStore) List(_ context.Context, q dto.ActivityQuery) ([]*models.Activity, int64, error) {
	return f.list(func(*models.Activity) bool { return true }, q)
}

func (f *fakeActivityStore) ListByOrganizer(_ context.Context, organizerID int64, q dto.ActivityQuery) ([]*models.Activity, int64, error) {
	return f.list(func(a *models.Activity) bool { return a.OrganizerID == organizerID }, q)
}

func (f *fakeActivityStore) ListEnrolledBy(_ context.Context, userID int64, q dto.ActivityQuery) ([]*models.Activity, int64, error) {
	return f.list(func(a *models.Activity) bool {
		e, ok := f.s.enrollments[a.ID][userID]
		return ok && e.Status == models.EnrollmentEnrolled
	}, q)
}

func (f *fakeActivityStore) CountEnrolledByActivityIDs(_ context.Context, ids []int64) (map[int64]int, error) {
	m := f.s
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[int64]int, len(ids))
	for _, id := range ids {
		counts[id] = m.countEnrolledLocked(id)
	}
	return counts, nil
}

func (f *fakeActivityStore) Exists(_ context.Context, id int64) (bool, error) {
	m := f.s
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.activities[id]
	return ok, nil
}

// fakeEnrollmentStore implements EnrollmentStore over a memStore
type fakeEnrollmentStore struct{ s *memStore }

func (f *fakeEnrollmentStore) Admit(_ context.Context, activityID, userID int64, now time.Time) (*models.Enrollment, error) {
	m := f.s
	m.mu.Lock()
	defer m.mu.Unlock()

	activity, ok := m.activities[activityID]
	if !ok {
		return nil, apperrors.ErrActivityNotFound
	}

	snap := lifecycle.AdmitSnapshot{
		Status:               activity.Status,
		RegistrationDeadline: activity.RegistrationDeadline,
		MaxParticipants:      activity.MaxParticipants,
		EnrolledCount:        m.countEnrolledLocked(activityID),
	}
	if existing, ok := m.enrollments[activityID][userID]; ok {
		snap.UserEnrolled = existing.Status == models.EnrollmentEnrolled
		snap.UserHasCancelledRow = existing.Status == models.EnrollmentCancelled
	}

	mode, err := lifecycle.CheckAdmission(snap, now)
	if err != nil {
		return nil, err
	}

	if mode == lifecycle.AdmitReactivate {
		e := m.enrollments[activityID][userID]
		e.Status = models.EnrollmentEnrolled
		e.EnrollTime = now
		copied := *e
		return &copied, nil
	}

	if m.enrollments[activityID] == nil {
		m.enrollments[activityID] = make(map[int64]*models.Enrollment)
	}
	e := &models.Enrollment{
		ID:         m.idLocked(),
		ActivityID: activityID,
		UserID:     userID,
		Status:     models.EnrollmentEnrolled,
		EnrollTime: now,
	}
	m.enrollments[activityID][userID] = e
	copied := *e
	return &copied, nil
}

func (f *fakeEnrollmentStore) FindActive(_ context.Context, activityID, userID int64) (*models.Enrollment, error) {
	m := f.s
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.enrollments[activityID][userID]
	if !ok || e.Status != models.EnrollmentEnrolled {
		return nil, nil
	}
	copied := *e
	return &copied, nil
}

func (f *fakeEnrollmentStore) CancelActive(_ context.Context, activityID, userID int64) error {
	m := f.s
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.enrollments[activityID][userID]
	if !ok || e.Status != models.EnrollmentEnrolled {
		return apperrors.ErrEnrollmentNotFound
	}
	e.Status = models.EnrollmentCancelled
	return nil
}

func (f *fakeEnrollmentStore) CancelActivityCascade(_ context.Context, activityID int64) (int64, error) {
	m := f.s
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.activities[activityID]
	if !ok {
		return 0, apperrors.ErrActivityNotFound
	}
	a.Status = models.StatusCancelled
	var cancelled int64
	for _, e := range m.enrollments[activityID] {
		if e.Status == models.EnrollmentEnrolled {
			e.Status = models.EnrollmentCancelled
			cancelled++
		}
	}
	return cancelled, nil
}

func (f *fakeEnrollmentStore) CountEnrolled(_ context.Context, activityID int64) (int, error) {
	m := f.s
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.countEnrolledLocked(activityID), nil
}

func (f *fakeEnrollmentStore) ListEnrolled(_ context.Context, activityID int64) ([]*models.Enrollment, error) {
	m := f.s
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Enrollment
	for _, e := range m.enrollments[activityID] {
		if e.Status == models.EnrollmentEnrolled {
			copied := *e
			copied.User = m.users[e.UserID]
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EnrollTime.Before(out[j].EnrollTime) })
	return out, nil
}

// fakeCategoryStore implements CategoryStore over a memStore
type fakeCategoryStore struct{ s *memStore }

func (f *fakeCategoryStore) GetAll(_ context.Context) ([]*models.Category, error) {
	m := f.s
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Category
	for id := int64(1); id <= m.nextID; id++ {
		if c, ok := m.categories[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCategoryStore) GetByID(_ context.Context, id int64) (*models.Category, error) {
	m := f.s
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.categories[id]
	if !ok {
		return nil, apperrors.ErrCategoryNotFound
	}
	return c, nil
}

// fakeUserStore implements UserStore over a memStore
type fakeUserStore struct{ s *memStore }

func (f *fakeUserStore) Create(_ context.Context, user *models.User) (int64, error) {
	m := f.s
	m.mu.Lock()
	defer m.mu.Unlock()
	user.ID = m.idLocked()
	m.users[user.ID] = user
	return user.ID, nil
}

func (f *fakeUserStore) FindByID(_ context.Context, id int64) (*models.User, error) {
	m := f.s
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[id], nil
}

func (f *fakeUserStore) FindByUsername(_ context.Context, username string) (*models.User, error) {
	m := f.s
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	m := f.s
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) Update(_ context.Context, user *models.User) error {
	m := f.s
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return apperrors.ErrUserNotFound
	}
	m.users[user.ID] = user
	return nil
}

func (f *fakeUserStore) UpdatePassword(_ context.Context, userID int64, hashedPassword string) error {
	m := f.s
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	u.Password = hashedPassword
	return nil
}

type fakeTokenStore struct{ s *memStore }

func (f *fakeTokenStore) Save(_ context.Context, userID int64, token string, expiresAt time.Time) error {
	m := f.s
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[token] = &models.RefreshToken{ID: m.idLocked(), UserID: userID, Token: token, ExpiresAt: expiresAt}
	return nil
}

func (f *fakeTokenStore) Find(_ context.Context, token string) (*models.RefreshToken, error) {
	m := f.s
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.tokens[token]
	if !ok {
		return nil, apperrors.ErrTokenNotFound
	}
	return stored, nil
}

func (f *fakeTokenStore) Delete(_ context.Context, token string) error {
	m := f.s
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, token)
	return nil
}

func (f *fakeTokenStore) DeleteForUser(_ context.Context, userID int64) error {
	m := f.s
	m.mu.Lock()
	defer m.mu.Unlock()
	for token, stored := range m.tokens {
		if stored.UserID == userID {
			delete(m.tokens, token)
		}
	}
	return nil
}

type fakeCommentStore struct{ s *memStore }

func (f *fakeCommentStore) Create(_ context.Context, comment *models.Comment) (int64, error) {
	m := f.s
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.activities[comment.ActivityID]; !ok {
		return 0, apperrors.ErrActivityNotFound
	}
	comment.ID = m.idLocked()
	// Strictly increasing timestamps keep newest-first ordering deterministic.
	comment.CreateTime = time.Now().Add(time.Duration(comment.ID) * time.Millisecond)
	stored := *comment
	m.comments = append(m.comments, &stored)
	return comment.ID, nil
}

func (f *fakeCommentStore) GetByID(_ context.Context, id int64) (*models.Comment, error) {
	m := f.s
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.comments {
		if c.ID == id {
			copied := *c
			return &copied, nil
		}
	}
	return nil, apperrors.ErrCommentNotFound
}

func (f *fakeCommentStore) ListByActivity(_ context.Context, activityID int64, page, pageSize int) ([]*models.Comment, int64, *float64, error) {
	m := f.s
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []*models.Comment
	var ratingSum, ratingCount int
	for _, c := range m.comments {
		if c.ActivityID == activityID {
			copied := *c
			copied.User = m.users[c.UserID]
			all = append(all, &copied)
			if c.Rating != nil {
				ratingSum += *c.Rating
				ratingCount++
			}
		}
	}
	// Newest first, matching the repository ordering
	sort.Slice(all, func(i, j int) bool { return all[i].CreateTime.After(all[j].CreateTime) })

	var avg *float64
	if ratingCount > 0 {
		v := float64(ratingSum) / float64(ratingCount)
		avg = &v
	}

	total := int64(len(all))
	start := (page - 1) * pageSize
	if start >= len(all) {
		return nil, total, nil, nil
	}
	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, avg, nil
}

func (f *fakeCommentStore) ListByUser(_ context.Context, userID int64, page, pageSize int) ([]*models.Comment, int64, error) {
	m := f.s
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []*models.Comment
	for _, c := range m.comments {
		if c.UserID == userID {
			copied := *c
			copied.Activity = m.activities[c.ActivityID]
			all = append(all, &copied)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreateTime.After(all[j].CreateTime) })

	total := int64(len(all))
	start := (page - 1) * pageSize
	if start >= len(all) {
		return nil, total, nil
	}
	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (f *fakeCommentStore) Update(_ context.Context, comment *models.Comment) error {
	m := f.s
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.comments {
		if c.ID == comment.ID {
			c.Content = comment.Content
			c.Rating = comment.Rating
			return nil
		}
	}
	return apperrors.ErrCommentNotFound
}

func (f *fakeCommentStore) Delete(_ context.Context, id int64) error {
	m := f.s
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, c := range m.comments {
		if c.ID == id {
			m.comments = append(m.comments[:i], m.comments[i+1:]...)
			return nil
		}
	}
	return apperrors.ErrCommentNotFound
}

// fakeAuthorizer grants management to the organizer and to ids marked
// as admins
type fakeAuthorizer struct {
	admins map[int64]bool
}

func (f *fakeAuthorizer) CanManageActivity(_ context.Context, actorID int64, activity *models.Activity) error {
	if activity == nil {
		return apperrors.ErrActivityNotFound
	}
	if activity.OrganizerID == actorID || f.admins[actorID] {
		return nil
	}
	return apperrors.NewForbiddenError("you don't have permission to manage this activity")
}
