package usecase

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"docseal/internal/domain"
)

type fakeDocumentRepo struct {
	mu      sync.Mutex
	records map[uuid.UUID]domain.DocumentRecord
}

func newFakeDocumentRepo() *fakeDocumentRepo {
	return &fakeDocumentRepo{records: make(map[uuid.UUID]domain.DocumentRecord)}
}

func (r *fakeDocumentRepo) Create(_ context.Context, record domain.DocumentRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.records {
		if !existing.IsDeleted && !record.IsDeleted &&
			existing.OwnerIC == record.OwnerIC && existing.DocumentType == record.DocumentType {
			return domain.ErrConflict
		}
	}
	r.records[record.ID] = record
	return nil
}

func (r *fakeDocumentRepo) GetByID(_ context.Context, id uuid.UUID) (domain.DocumentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[id]
	if !ok {
		return domain.DocumentRecord{}, domain.ErrNotFound
	}
	return record, nil
}

func (r *fakeDocumentRepo) FindConflicting(_ context.Context, ownerIC, documentType string, exclude uuid.UUID) ([]domain.DocumentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.DocumentRecord
	for _, record := range r.records {
		if record.ID == exclude {
			continue
		}
		if record.OwnerIC == ownerIC && record.DocumentType == documentType {
			out = append(out, record)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

func (r *fakeDocumentRepo) Update(_ context.Context, record domain.DocumentRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[record.ID]; !ok {
		return domain.ErrNotFound
	}
	r.records[record.ID] = record
	return nil
}

func (r *fakeDocumentRepo) HardDelete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.records, id)
	return nil
}

func (r *fakeDocumentRepo) List(_ context.Context, deleted bool, limit, offset int) ([]domain.DocumentRecord, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.DocumentRecord
	for _, record := range r.records {
		if record.IsDeleted == deleted {
			out = append(out, record)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	total := int64(len(out))
	if offset >= len(out) {
		return nil, total, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, total, nil
}

// fakeCodec is a transparent stand-in for the OAEP codec; real codec
// behaviour is covered in the token package tests.
type fakeCodec struct{}

func (fakeCodec) Encode(id uuid.UUID) (string, error) {
	return "tok:" + id.String(), nil
}

func (fakeCodec) Decode(tok string) (uuid.UUID, error) {
	raw, ok := strings.CutPrefix(tok, "tok:")
	if !ok {
		return uuid.Nil, domain.ErrInvalidToken
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, domain.ErrInvalidToken
	}
	return id, nil
}

type fakeAccountRepo struct {
	accounts map[int64]domain.StaffAccount
}

func (r *fakeAccountRepo) GetByID(_ context.Context, accountID int64) (domain.StaffAccount, error) {
	account, ok := r.accounts[accountID]
	if !ok {
		return domain.StaffAccount{}, domain.ErrNotFound
	}
	return account, nil
}

func (r *fakeAccountRepo) GetByEmail(_ context.Context, email string) (domain.StaffAccount, error) {
	for _, account := range r.accounts {
		if account.Email == email {
			return account, nil
		}
	}
	return domain.StaffAccount{}, domain.ErrNotFound
}

func (r *fakeAccountRepo) ListSuperuserIDs(_ context.Context) ([]int64, error) {
	var ids []int64
	for _, account := range r.accounts {
		if account.IsSuper {
			ids = append(ids, account.AccountID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (r *fakeAccountRepo) TouchLastLogin(_ context.Context, accountID int64, at time.Time) error {
	account, ok := r.accounts[accountID]
	if !ok {
		return domain.ErrNotFound
	}
	account.LastLoginAt = &at
	r.accounts[accountID] = account
	return nil
}

type fakeOwnerRepo struct {
	owners map[string]string
}

func (r *fakeOwnerRepo) GetByIC(_ context.Context, ic string) (domain.Owner, error) {
	name, ok := r.owners[ic]
	if !ok {
		return domain.Owner{}, domain.ErrNotFound
	}
	return domain.Owner{IC: ic, FullName: name}, nil
}

type fakeArtifactStore struct {
	mu      sync.Mutex
	saved   map[uuid.UUID][]byte
	stamped map[uuid.UUID][]byte
	purged  []uuid.UUID
}

func newFakeArtifactStore() *fakeArtifactStore {
	return &fakeArtifactStore{
		saved:   make(map[uuid.UUID][]byte),
		stamped: make(map[uuid.UUID][]byte),
	}
}

func (s *fakeArtifactStore) SaveOriginal(id uuid.UUID, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved[id] = data
	return "original/" + id.String() + ".pdf", nil
}

func (s *fakeArtifactStore) SaveStamped(id uuid.UUID, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stamped[id] = data
	return "stamped/" + id.String() + ".pdf", nil
}

func (s *fakeArtifactStore) LoadStamped(path string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, data := range s.stamped {
		if path == "stamped/"+id.String()+".pdf" {
			return data, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *fakeArtifactStore) Purge(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.saved, id)
	delete(s.stamped, id)
	s.purged = append(s.purged, id)
	return nil
}

type fakeAuditRepo struct {
	entries []domain.DeletionAudit
}

func (r *fakeAuditRepo) Append(_ context.Context, entry domain.DeletionAudit) error {
	r.entries = append(r.entries, entry)
	return nil
}

type fakeNotificationRepo struct {
	mu         sync.Mutex
	nextID     int64
	created    []domain.Notification
	deliveries []domain.DeliveryRecord
}

func (r *fakeNotificationRepo) CreateWithRecipients(_ context.Context, message string, createdAt time.Time, recipientIDs []int64) (domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	notification := domain.Notification{ID: r.nextID, Message: message, CreatedAt: createdAt}
	r.created = append(r.created, notification)
	for _, accountID := range recipientIDs {
		r.deliveries = append(r.deliveries, domain.DeliveryRecord{
			ID:             int64(len(r.deliveries) + 1),
			AccountID:      accountID,
			NotificationID: notification.ID,
		})
	}
	return notification, nil
}

func (r *fakeNotificationRepo) MarkDelivered(_ context.Context, accountID, notificationID int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.deliveries {
		d := &r.deliveries[i]
		if d.AccountID == accountID && d.NotificationID == notificationID {
			d.Delivered = true
			d.DeliveredAt = &at
		}
	}
	return nil
}

func (r *fakeNotificationRepo) MarkAllDelivered(_ context.Context, accountID int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.deliveries {
		d := &r.deliveries[i]
		if d.AccountID == accountID && !d.Delivered {
			d.Delivered = true
			d.DeliveredAt = &at
		}
	}
	return nil
}

func (r *fakeNotificationRepo) MarkRead(_ context.Context, accountID, notificationID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.deliveries {
		d := &r.deliveries[i]
		if d.AccountID == accountID && d.NotificationID == notificationID {
			d.Read = true
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *fakeNotificationRepo) MarkAllRead(_ context.Context, accountID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.deliveries {
		if r.deliveries[i].AccountID == accountID {
			r.deliveries[i].Read = true
		}
	}
	return nil
}

func (r *fakeNotificationRepo) ListFeed(_ context.Context, accountID int64) ([]domain.NotificationFeedItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.NotificationFeedItem
	for _, d := range r.deliveries {
		if d.AccountID != accountID {
			continue
		}
		for _, n := range r.created {
			if n.ID == d.NotificationID {
				out = append(out, domain.NotificationFeedItem{Notification: n, Read: d.Read})
			}
		}
	}
	return out, nil
}

type fakePusher struct {
	mu   sync.Mutex
	jobs []PushJob
}

func (p *fakePusher) Enqueue(job PushJob) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.jobs = append(p.jobs, job)
}

type markerEmbedder struct{}

func (markerEmbedder) Embed(pdf []byte, verifyURL string) ([]byte, error) {
	return append(append([]byte{}, pdf...), []byte("|qr:"+verifyURL)...), nil
}

type denyAuthorizer struct {
	denied map[string]bool
}

func (a *denyAuthorizer) Authorize(_ context.Context, input domain.AuthzInput) (domain.AuthzDecision, error) {
	if a.denied[input.Action] {
		return domain.AuthzDecision{Allow: false, Reason: "denied by test policy"}, nil
	}
	return domain.AuthzDecision{Allow: true}, nil
}
