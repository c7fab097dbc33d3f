package router

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/xhunter74/collectionmanager/shared/domain"
	"github.com/xhunter74/collectionmanager/shared/errors"
)

// memStore keeps the relational rows in maps. Only what the api flows below
// touch is modeled.
type memStore struct {
	mu          sync.Mutex
	users       map[domain.UserId]domain.User
	collections map[domain.CollectionId]domain.Collection
	fields      map[domain.FieldId]domain.CollectionField
	values      map[uuid.UUID]domain.PossibleValue
	files       map[uuid.UUID]domain.File
}

func newMemStore() *memStore {
	return &memStore{
		users:       make(map[domain.UserId]domain.User),
		collections: make(map[domain.CollectionId]domain.Collection),
		fields:      make(map[domain.FieldId]domain.CollectionField),
		values:      make(map[uuid.UUID]domain.PossibleValue),
		files:       make(map[uuid.UUID]domain.File),
	}
}

func (m *memStore) Ping(ctx context.Context) error { return nil }

func (m *memStore) SaveUser(ctx context.Context, user domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return errors.Conflict("User already exists with this email address.")
		}
	}
	m.users[user.Id] = user
	return nil
}

func (m *memStore) UserByEmail(ctx context.Context, email string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, errors.NotFound("User not found")
}

func (m *memStore) UserById(ctx context.Context, id domain.UserId) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return domain.User{}, errors.NotFound("User not found")
	}
	return u, nil
}

func (m *memStore) UpdatePassword(ctx context.Context, id domain.UserId, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return errors.NotFound("User not found")
	}
	u.PasswordHash = passwordHash
	m.users[id] = u
	return nil
}

func (m *memStore) SetAvatar(ctx context.Context, id domain.UserId, avatar uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return errors.NotFound("User not found")
	}
	u.Avatar = &avatar
	m.users[id] = u
	return nil
}

func (m *memStore) CollectionForOwner(ctx context.Context, id domain.CollectionId, ownerId domain.UserId) (domain.Collection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.collections[id]
	if !ok || c.OwnerId != ownerId {
		return domain.Collection{}, errors.NotFound("Collection not found")
	}
	return c, nil
}

func (m *memStore) Collections(ctx context.Context, ownerId domain.UserId) ([]domain.Collection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var owned []domain.Collection
	for _, c := range m.collections {
		if c.OwnerId == ownerId {
			owned = append(owned, c)
		}
	}
	sort.Slice(owned, func(i, j int) bool { return owned[i].Name < owned[j].Name })
	return owned, nil
}

func (m *memStore) CreateCollection(ctx context.Context, data domain.CollectionCreationData) (domain.Collection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	c := domain.Collection{
		Id:          uuid.New(),
		Name:        data.Name,
		Description: data.Description,
		OwnerId:     data.OwnerId,
		Created:     now,
		Updated:     now,
	}
	m.collections[c.Id] = c
	for _, f := range domain.SystemFields(c.Id) {
		f.Id = uuid.New()
		f.Created, f.Updated = now, now
		m.fields[f.Id] = f
	}
	return c, nil
}

func (m *memStore) UpdateCollection(ctx context.Context, ownerId domain.UserId, data domain.CollectionUpdateData) (domain.Collection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.collections[data.Id]
	if !ok || c.OwnerId != ownerId {
		return domain.Collection{}, errors.NotFound("Collection not found")
	}
	c.Name, c.Description, c.Image = data.Name, data.Description, data.Image
	c.Updated = time.Now().UTC()
	m.collections[c.Id] = c
	return c, nil
}

func (m *memStore) DeleteCollection(ctx context.Context, id domain.CollectionId, ownerId domain.UserId) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.collections[id]
	if !ok || c.OwnerId != ownerId {
		return errors.NotFound("Collection not found")
	}
	delete(m.collections, id)
	for fid, f := range m.fields {
		if f.CollectionId == id {
			delete(m.fields, fid)
			for vid, v := range m.values {
				if v.CollectionFieldId == fid {
					delete(m.values, vid)
				}
			}
		}
	}
	for fid, f := range m.files {
		if f.CollectionId == id {
			delete(m.files, fid)
		}
	}
	return nil
}

func (m *memStore) CollectionFiles(ctx context.Context, collectionId domain.CollectionId) ([]domain.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var files []domain.File
	for _, f := range m.files {
		if f.CollectionId == collectionId {
			files = append(files, f)
		}
	}
	return files, nil
}

func (m *memStore) CollectionFields(ctx context.Context, collectionId domain.CollectionId) ([]domain.CollectionField, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var fields []domain.CollectionField
	for _, f := range m.fields {
		if f.CollectionId == collectionId {
			fields = append(fields, f)
		}
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].Order < fields[j].Order })
	return fields, nil
}

func (m *memStore) FieldForOwner(ctx context.Context, id domain.FieldId, ownerId domain.UserId) (domain.CollectionField, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.fields[id]
	if !ok || m.collections[f.CollectionId].OwnerId != ownerId {
		return domain.CollectionField{}, errors.NotFound("Field not found")
	}
	return f, nil
}

func (m *memStore) CreateField(ctx context.Context, data domain.FieldCreationData) (domain.CollectionField, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order := 0
	if data.Order != nil {
		order = *data.Order
	} else {
		for _, f := range m.fields {
			if f.CollectionId == data.CollectionId && f.Order >= order {
				order = f.Order + 1
			}
		}
	}
	now := time.Now().UTC()
	f := domain.CollectionField{
		Id:           uuid.New(),
		Name:         data.Name,
		Type:         data.Type,
		IsRequired:   data.IsRequired,
		Order:        order,
		CollectionId: data.CollectionId,
		Created:      now,
		Updated:      now,
	}
	m.fields[f.Id] = f
	return f, nil
}

func (m *memStore) UpdateField(ctx context.Context, data domain.FieldUpdateData) (domain.CollectionField, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.fields[data.Id]
	if !ok {
		return domain.CollectionField{}, errors.NotFound("Field not found")
	}
	m.swap(f, data.Order)
	f.Name, f.Type, f.IsRequired, f.Order = data.Name, data.Type, data.IsRequired, data.Order
	m.fields[f.Id] = f
	return f, nil
}

func (m *memStore) ChangeFieldOrder(ctx context.Context, id domain.FieldId, order int) (domain.CollectionField, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.fields[id]
	if !ok {
		return domain.CollectionField{}, errors.NotFound("Field not found")
	}
	m.swap(f, order)
	f.Order = order
	m.fields[id] = f
	return f, nil
}

// must be called with mu held
func (m *memStore) swap(moved domain.CollectionField, order int) {
	for id, f := range m.fields {
		if f.CollectionId == moved.CollectionId && f.Id != moved.Id && f.Order == order {
			f.Order = moved.Order
			m.fields[id] = f
		}
	}
}

func (m *memStore) DeleteField(ctx context.Context, id domain.FieldId) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.fields, id)
	return nil
}

func (m *memStore) PossibleValues(ctx context.Context, fieldId domain.FieldId) ([]domain.PossibleValue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var values []domain.PossibleValue
	for _, v := range m.values {
		if v.CollectionFieldId == fieldId {
			values = append(values, v)
		}
	}
	return values, nil
}

func (m *memStore) PossibleValueForOwner(ctx context.Context, id uuid.UUID, ownerId domain.UserId) (domain.PossibleValue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[id]
	if !ok || m.collections[m.fields[v.CollectionFieldId].CollectionId].OwnerId != ownerId {
		return domain.PossibleValue{}, errors.NotFound("Possible value not found")
	}
	return v, nil
}

func (m *memStore) CreatePossibleValue(ctx context.Context, fieldId domain.FieldId, value string) (domain.PossibleValue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := domain.PossibleValue{Id: uuid.New(), Value: value, CollectionFieldId: fieldId}
	m.values[v.Id] = v
	return v, nil
}

func (m *memStore) UpdatePossibleValue(ctx context.Context, id uuid.UUID, value string) (domain.PossibleValue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := m.values[id]
	v.Value = value
	m.values[id] = v
	return v, nil
}

func (m *memStore) DeletePossibleValue(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, id)
	return nil
}

func (m *memStore) SaveFile(ctx context.Context, f domain.File) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[f.Id] = f
	return nil
}

func (m *memStore) FileForOwner(ctx context.Context, id uuid.UUID, ownerId domain.UserId, collectionId *domain.CollectionId) (domain.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.files[id]
	if !ok || m.collections[f.CollectionId].OwnerId != ownerId || (collectionId != nil && *collectionId != f.CollectionId) {
		return domain.File{}, errors.NotFound("File not found")
	}
	return f, nil
}

func (m *memStore) DeleteFileRecord(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.files[id]; !ok {
		return errors.NotFound("File not found")
	}
	delete(m.files, id)
	for cid, c := range m.collections {
		if c.Image != nil && *c.Image == id {
			c.Image = nil
			m.collections[cid] = c
		}
	}
	return nil
}

type memItems struct {
	mu   sync.Mutex
	docs map[domain.ItemId]domain.ItemDocument
}

func newMemItems() *memItems {
	return &memItems{docs: make(map[domain.ItemId]domain.ItemDocument)}
}

func (m *memItems) Ping(ctx context.Context) error { return nil }

func (m *memItems) Add(ctx context.Context, doc domain.ItemDocument) (domain.ItemDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	doc.Id = uuid.New()
	doc.Created, doc.Updated = now, now
	m.docs[doc.Id] = doc
	return doc, nil
}

func (m *memItems) GetById(ctx context.Context, id domain.ItemId) (*domain.ItemDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok {
		return nil, nil
	}
	return &doc, nil
}

func (m *memItems) GetAll(ctx context.Context, collectionId domain.CollectionId, projection domain.Projection) ([]domain.ItemDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var docs []domain.ItemDocument
	for _, doc := range m.docs {
		if doc.CollectionId != collectionId {
			continue
		}
		if projection != nil {
			fields := make(domain.FieldDictionary)
			for _, key := range projection {
				if v, ok := doc.Fields[key]; ok {
					fields[key] = v
				}
			}
			doc.Fields = fields
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (m *memItems) Update(ctx context.Context, doc domain.ItemDocument) (domain.ItemDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.docs[doc.Id]
	if !ok {
		return domain.ItemDocument{}, errors.NotFound("Item not found")
	}
	doc.CollectionId, doc.Created = current.CollectionId, current.Created
	doc.Updated = time.Now().UTC()
	m.docs[doc.Id] = doc
	return doc, nil
}

func (m *memItems) Remove(ctx context.Context, id domain.ItemId) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, id)
	return nil
}

func (m *memItems) RemoveByCollection(ctx context.Context, collectionId domain.CollectionId) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var removed int64
	for id, doc := range m.docs {
		if doc.CollectionId == collectionId {
			delete(m.docs, id)
			removed++
		}
	}
	return removed, nil
}
