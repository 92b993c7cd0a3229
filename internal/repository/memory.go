package repository

import (
	"sort"
	"sync"
	"time"

	"backend/internal/models"
)

// In-memory repositories backing tests and offline runs. They mirror the
// Postgres implementations' semantics, including ErrNotFound and upsert
// behavior.

type memoryStatementRepository struct {
	mu         sync.RWMutex
	statements map[string]models.Statement
	order      []string
}

func NewMemoryStatementRepository() StatementRepository {
	return &memoryStatementRepository{statements: map[string]models.Statement{}}
}

func (r *memoryStatementRepository) Create(s *models.Statement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	if _, ok := r.statements[s.ID]; !ok {
		r.order = append(r.order, s.ID)
	}
	r.statements[s.ID] = *s
	return nil
}

func (r *memoryStatementRepository) GetByID(userID int64, id string) (*models.Statement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.statements[id]
	if !ok || s.UserID != userID {
		return nil, ErrNotFound
	}
	out := s
	return &out, nil
}

func (r *memoryStatementRepository) ListByTopic(userID int64, topic string) ([]models.Statement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []models.Statement{}
	for _, id := range r.order {
		s, ok := r.statements[id]
		if ok && s.UserID == userID && s.Topic == topic {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *memoryStatementRepository) Update(s *models.Statement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.statements[s.ID]
	if !ok || existing.UserID != s.UserID {
		return ErrNotFound
	}
	s.CreatedAt = existing.CreatedAt
	r.statements[s.ID] = *s
	return nil
}

func (r *memoryStatementRepository) Delete(userID int64, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.statements[id]
	if !ok || s.UserID != userID {
		return ErrNotFound
	}
	delete(r.statements, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *memoryStatementRepository) DeleteByTopic(userID int64, topic string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.order[:0]
	for _, id := range r.order {
		s := r.statements[id]
		if s.UserID == userID && s.Topic == topic {
			delete(r.statements, id)
			continue
		}
		kept = append(kept, id)
	}
	r.order = kept
	return nil
}

type memoryPerturbationRepository struct {
	mu            sync.RWMutex
	perturbations map[string]models.Perturbation
}

func NewMemoryPerturbationRepository() PerturbationRepository {
	return &memoryPerturbationRepository{perturbations: map[string]models.Perturbation{}}
}

func (r *memoryPerturbationRepository) Upsert(p *models.Perturbation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.perturbations[p.ID]; ok {
		p.CreatedAt = existing.CreatedAt
	} else if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	r.perturbations[p.ID] = *p
	return nil
}

func (r *memoryPerturbationRepository) GetByID(userID int64, id string) (*models.Perturbation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.perturbations[id]
	if !ok || p.UserID != userID {
		return nil, ErrNotFound
	}
	out := p
	return &out, nil
}

func (r *memoryPerturbationRepository) ListByTopic(userID int64, topic string) ([]models.Perturbation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []models.Perturbation{}
	for _, p := range r.perturbations {
		if p.UserID == userID && p.Topic == topic {
			out = append(out, p)
		}
	}
	sortPerturbations(out)
	return out, nil
}

func (r *memoryPerturbationRepository) ListByOriginal(userID int64, originalID string) ([]models.Perturbation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []models.Perturbation{}
	for _, p := range r.perturbations {
		if p.UserID == userID && p.OriginalID == originalID {
			out = append(out, p)
		}
	}
	sortPerturbations(out)
	return out, nil
}

func (r *memoryPerturbationRepository) Update(p *models.Perturbation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.perturbations[p.ID]
	if !ok || existing.UserID != p.UserID {
		return ErrNotFound
	}
	p.CreatedAt = existing.CreatedAt
	r.perturbations[p.ID] = *p
	return nil
}

func (r *memoryPerturbationRepository) DeleteByCriterion(userID int64, criterion string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, p := range r.perturbations {
		if p.UserID == userID && p.Criterion == criterion {
			delete(r.perturbations, id)
		}
	}
	return nil
}

func (r *memoryPerturbationRepository) DeleteByOriginal(userID int64, originalID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, p := range r.perturbations {
		if p.UserID == userID && p.OriginalID == originalID {
			delete(r.perturbations, id)
		}
	}
	return nil
}

func (r *memoryPerturbationRepository) DeleteByTopic(userID int64, topic string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, p := range r.perturbations {
		if p.UserID == userID && p.Topic == topic {
			delete(r.perturbations, id)
		}
	}
	return nil
}

func sortPerturbations(perturbations []models.Perturbation) {
	sort.Slice(perturbations, func(i, j int) bool {
		if perturbations[i].OriginalID != perturbations[j].OriginalID {
			return perturbations[i].OriginalID < perturbations[j].OriginalID
		}
		return perturbations[i].Criterion < perturbations[j].Criterion
	})
}

type pinKey struct {
	userID int64
	topic  string
}

type customKey struct {
	userID int64
	name   string
}

type memoryCriteriaRepository struct {
	mu     sync.RWMutex
	pinned map[pinKey][]models.Criterion
	custom map[customKey]models.Criterion
	orders map[int64][]string
}

func NewMemoryCriteriaRepository() CriteriaRepository {
	return &memoryCriteriaRepository{
		pinned: map[pinKey][]models.Criterion{},
		custom: map[customKey]models.Criterion{},
		orders: map[int64][]string{},
	}
}

func (r *memoryCriteriaRepository) GetPinnedSet(userID int64, topic string) ([]models.Criterion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set, ok := r.pinned[pinKey{userID, topic}]
	if !ok || len(set) == 0 {
		return nil, ErrNotFound
	}
	out := make([]models.Criterion, len(set))
	copy(out, set)
	return out, nil
}

func (r *memoryCriteriaRepository) SavePinnedSet(userID int64, topic string, set []models.Criterion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := make([]models.Criterion, len(set))
	copy(stored, set)
	r.pinned[pinKey{userID, topic}] = stored
	return nil
}

func (r *memoryCriteriaRepository) DeletePinnedSet(userID int64, topic string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.pinned, pinKey{userID, topic})
	return nil
}

func (r *memoryCriteriaRepository) ListCustom(userID int64) ([]models.Criterion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []models.Criterion{}
	for _, name := range r.orders[userID] {
		if c, ok := r.custom[customKey{userID, name}]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *memoryCriteriaRepository) GetCustom(userID int64, name string) (*models.Criterion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.custom[customKey{userID, name}]
	if !ok {
		return nil, ErrNotFound
	}
	out := c
	return &out, nil
}

func (r *memoryCriteriaRepository) SaveCustom(userID int64, c *models.Criterion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := customKey{userID, c.Name}
	if existing, ok := r.custom[key]; ok {
		c.CreatedAt = existing.CreatedAt
	} else {
		if c.CreatedAt.IsZero() {
			c.CreatedAt = time.Now()
		}
		r.orders[userID] = append(r.orders[userID], c.Name)
	}
	r.custom[key] = *c
	return nil
}

func (r *memoryCriteriaRepository) DeleteCustom(userID int64, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := customKey{userID, name}
	if _, ok := r.custom[key]; !ok {
		return ErrNotFound
	}
	delete(r.custom, key)
	names := r.orders[userID]
	for i, n := range names {
		if n == name {
			r.orders[userID] = append(names[:i], names[i+1:]...)
			break
		}
	}
	return nil
}

type cacheKey struct {
	userID      int64
	topic       string
	modelID     string
	statementID string
}

type memoryAssessmentCacheRepository struct {
	mu      sync.RWMutex
	entries map[cacheKey]models.CachedAssessment
}

func NewMemoryAssessmentCacheRepository() AssessmentCacheRepository {
	return &memoryAssessmentCacheRepository{entries: map[cacheKey]models.CachedAssessment{}}
}

func (r *memoryAssessmentCacheRepository) Get(userID int64, topic, modelID, statementID string) (*models.CachedAssessment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[cacheKey{userID, topic, modelID, statementID}]
	if !ok {
		return nil, ErrNotFound
	}
	out := entry
	return &out, nil
}

func (r *memoryAssessmentCacheRepository) Put(entry *models.CachedAssessment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := cacheKey{entry.UserID, entry.Topic, entry.ModelID, entry.StatementID}
	now := time.Now()
	if existing, ok := r.entries[key]; ok {
		entry.CreatedAt = existing.CreatedAt
	} else {
		entry.CreatedAt = now
	}
	entry.UpdatedAt = now
	r.entries[key] = *entry
	return nil
}

func (r *memoryAssessmentCacheRepository) DeleteScope(userID int64, topic, modelID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for key := range r.entries {
		if key.userID == userID && key.topic == topic && key.modelID == modelID {
			delete(r.entries, key)
			n++
		}
	}
	return n, nil
}

func (r *memoryAssessmentCacheRepository) DeleteTopic(userID int64, topic string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key := range r.entries {
		if key.userID == userID && key.topic == topic {
			delete(r.entries, key)
		}
	}
	return nil
}

type memoryTopicRepository struct {
	mu     sync.RWMutex
	topics map[pinKey]models.Topic
	order  []pinKey
}

func NewMemoryTopicRepository() TopicRepository {
	return &memoryTopicRepository{topics: map[pinKey]models.Topic{}}
}

func (r *memoryTopicRepository) Create(t *models.Topic) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := pinKey{t.UserID, t.Name}
	if existing, ok := r.topics[key]; ok {
		t.CreatedAt = existing.CreatedAt
	} else {
		if t.CreatedAt.IsZero() {
			t.CreatedAt = time.Now()
		}
		r.order = append(r.order, key)
	}
	r.topics[key] = *t
	return nil
}

func (r *memoryTopicRepository) Get(userID int64, name string) (*models.Topic, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.topics[pinKey{userID, name}]
	if !ok {
		return nil, ErrNotFound
	}
	out := t
	return &out, nil
}

func (r *memoryTopicRepository) List(userID int64) ([]models.Topic, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []models.Topic{}
	for _, key := range r.order {
		if key.userID != userID {
			continue
		}
		if t, ok := r.topics[key]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *memoryTopicRepository) Delete(userID int64, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := pinKey{userID, name}
	if _, ok := r.topics[key]; !ok {
		return ErrNotFound
	}
	delete(r.topics, key)
	for i, k := range r.order {
		if k == key {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

type memoryAuthRepository struct {
	mu     sync.RWMutex
	users  map[string]models.User
	nextID int64
}

func NewMemoryAuthRepository() AuthRepository {
	return &memoryAuthRepository{users: map[string]models.User{}, nextID: 1}
}

func (r *memoryAuthRepository) CreateUser(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.ID = r.nextID
	r.nextID++
	user.CreatedAt = time.Now()
	r.users[user.Username] = *user
	return nil
}

func (r *memoryAuthRepository) GetUserByUsername(username string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[username]
	if !ok {
		return nil, ErrNotFound
	}
	out := user
	return &out, nil
}

func (r *memoryAuthRepository) CountUsers() (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users), nil
}

type memorySettingsRepository struct {
	mu     sync.RWMutex
	models map[int64]string
}

func NewMemorySettingsRepository() SettingsRepository {
	return &memorySettingsRepository{models: map[int64]string{}}
}

func (r *memorySettingsRepository) GetModel(userID int64) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	modelID, ok := r.models[userID]
	if !ok {
		return "", ErrNotFound
	}
	return modelID, nil
}

func (r *memorySettingsRepository) SetModel(userID int64, modelID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.models[userID] = modelID
	return nil
}
