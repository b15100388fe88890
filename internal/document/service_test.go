package document

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bisoye/docvault/internal/model"
)

// --- モック ---

type mockDocumentRepo struct {
	createFn          func(ctx context.Context, doc *model.Document) error
	listFn            func(ctx context.Context, limit int) ([]model.DocumentView, error)
	listByPermittedFn func(ctx context.Context, role string, limit int) ([]model.DocumentView, error)
	listByDateFn      func(ctx context.Context, date string, limit int) ([]model.DocumentView, error)
	deleteAllFn       func(ctx context.Context) error
}

func (m *mockDocumentRepo) Create(ctx context.Context, doc *model.Document) error {
	if m.createFn != nil {
		return m.createFn(ctx, doc)
	}
	return nil
}

func (m *mockDocumentRepo) List(ctx context.Context, limit int) ([]model.DocumentView, error) {
	if m.listFn != nil {
		return m.listFn(ctx, limit)
	}
	return nil, nil
}

func (m *mockDocumentRepo) ListByPermitted(ctx context.Context, role string, limit int) ([]model.DocumentView, error) {
	if m.listByPermittedFn != nil {
		return m.listByPermittedFn(ctx, role, limit)
	}
	return nil, nil
}

func (m *mockDocumentRepo) ListByDate(ctx context.Context, date string, limit int) ([]model.DocumentView, error) {
	if m.listByDateFn != nil {
		return m.listByDateFn(ctx, date, limit)
	}
	return nil, nil
}

func (m *mockDocumentRepo) DeleteAll(ctx context.Context) error {
	if m.deleteAllFn != nil {
		return m.deleteAllFn(ctx)
	}
	return nil
}

type mockRoleEnsurer struct {
	ensureFn func(ctx context.Context, title string) (*model.Role, error)
	calls    []string
}

func (m *mockRoleEnsurer) EnsureRole(ctx context.Context, title string) (*model.Role, error) {
	m.calls = append(m.calls, title)
	if m.ensureFn != nil {
		return m.ensureFn(ctx, title)
	}
	return &model.Role{ID: "role-1", Title: title}, nil
}

type upperSanitizer struct{}

func (upperSanitizer) Sanitize(raw string) string { return strings.ToUpper(raw) }

// --- テスト ---

// 作成時にロール解決が先行し、採番された日付付きで挿入されることを検証する。
func TestService_Create_Success(t *testing.T) {
	var created *model.Document
	repo := &mockDocumentRepo{
		createFn: func(ctx context.Context, doc *model.Document) error {
			created = doc
			return nil
		},
	}
	roles := &mockRoleEnsurer{}

	svc := NewService(repo, roles, nil, nil)
	svc.now = func() time.Time {
		return time.Date(2024, time.March, 7, 9, 0, 0, 0, time.UTC)
	}

	doc, err := svc.Create(context.Background(), "sweet potato", "regular")
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if len(roles.calls) != 1 || roles.calls[0] != "regular" {
		t.Errorf("role resolution calls = %v, want [regular]", roles.calls)
	}
	if created == nil {
		t.Fatal("expected document row to be created")
	}
	if doc.Content != "sweet potato" || doc.Permitted != "regular" {
		t.Errorf("doc = %+v", doc)
	}
	if doc.ID == "" {
		t.Error("expected generated ID")
	}
}

// 採番される日付が "YYYY-M-D"（1始まりの月、暦日そのまま）であることを検証する。
// 過去リビジョンの「曜日+4」計算を再発させないための回帰テスト。
func TestService_Create_DateStamp(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want string
	}{
		{
			// 2024-03-07は木曜日。曜日由来の計算なら 2024-3-8 になってしまう。
			name: "3月7日",
			now:  time.Date(2024, time.March, 7, 12, 0, 0, 0, time.UTC),
			want: "2024-3-7",
		},
		{
			name: "12月31日",
			now:  time.Date(2023, time.December, 31, 23, 59, 0, 0, time.UTC),
			want: "2023-12-31",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var created *model.Document
			repo := &mockDocumentRepo{
				createFn: func(ctx context.Context, doc *model.Document) error {
					created = doc
					return nil
				},
			}

			svc := NewService(repo, &mockRoleEnsurer{}, nil, nil)
			svc.now = func() time.Time { return tt.now }

			if _, err := svc.Create(context.Background(), "content", "regular"); err != nil {
				t.Fatalf("Create error: %v", err)
			}
			if created.DateCreated != tt.want {
				t.Errorf("DateCreated = %q, want %q", created.DateCreated, tt.want)
			}
		})
	}
}

// 必須属性欠落はバリデーションエラーになり、行を作成しないことを検証する。
func TestService_Create_Validation(t *testing.T) {
	createCalled := false
	repo := &mockDocumentRepo{
		createFn: func(ctx context.Context, doc *model.Document) error {
			createCalled = true
			return nil
		},
	}

	svc := NewService(repo, &mockRoleEnsurer{}, nil, nil)

	for _, tc := range []struct{ content, permitted string }{
		{content: "", permitted: "regular"},
		{content: "body", permitted: ""},
	} {
		_, err := svc.Create(context.Background(), tc.content, tc.permitted)
		storeErr, ok := err.(*model.StoreError)
		if !ok {
			t.Fatalf("Create(%q, %q) error type = %T, want *StoreError", tc.content, tc.permitted, err)
		}
		if storeErr.Code != model.ErrCodeValidation {
			t.Errorf("code = %q, want %q", storeErr.Code, model.ErrCodeValidation)
		}
	}
	if createCalled {
		t.Error("expected no write on validation failure")
	}
}

// 挿入失敗は握りつぶさず明示的なエラーとして返ることを検証する。
func TestService_Create_StorageFailure_Explicit(t *testing.T) {
	repo := &mockDocumentRepo{
		createFn: func(ctx context.Context, doc *model.Document) error {
			return errors.New("disk full")
		},
	}

	svc := NewService(repo, &mockRoleEnsurer{}, nil, nil)

	if _, err := svc.Create(context.Background(), "content", "regular"); err == nil {
		t.Fatal("expected explicit error, not a swallowed failure")
	}
}

// サニタイザが本文に適用されてから保存されることを検証する。
func TestService_Create_SanitizesContent(t *testing.T) {
	var created *model.Document
	repo := &mockDocumentRepo{
		createFn: func(ctx context.Context, doc *model.Document) error {
			created = doc
			return nil
		},
	}

	svc := NewService(repo, &mockRoleEnsurer{}, upperSanitizer{}, nil)

	if _, err := svc.Create(context.Background(), "hello", "regular"); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if created.Content != "HELLO" {
		t.Errorf("content = %q, want sanitized %q", created.Content, "HELLO")
	}
}

// GetAllがlimitをそのままリポジトリに渡すことを検証する。
func TestService_GetAll_PassesLimit(t *testing.T) {
	var gotLimit int
	repo := &mockDocumentRepo{
		listFn: func(ctx context.Context, limit int) ([]model.DocumentView, error) {
			gotLimit = limit
			return []model.DocumentView{
				{Content: "This is for the fans", Permitted: "regular", DateCreated: "2024-3-7"},
				{Content: "This belongs to the artist", Permitted: "moderator", DateCreated: "2024-3-7"},
			}, nil
		},
	}

	svc := NewService(repo, &mockRoleEnsurer{}, nil, nil)

	views, err := svc.GetAll(context.Background(), 2)
	if err != nil {
		t.Fatalf("GetAll error: %v", err)
	}
	if gotLimit != 2 {
		t.Errorf("limit = %d, want 2", gotLimit)
	}
	if len(views) != 2 {
		t.Errorf("len = %d, want 2", len(views))
	}
	if views[0].Content != "This is for the fans" {
		t.Errorf("views[0].Content = %q, want newest first", views[0].Content)
	}
}

// GetAllByRoleがロールとlimitをそのまま渡すことを検証する。
func TestService_GetAllByRole_PassesFilter(t *testing.T) {
	var gotRole string
	var gotLimit int
	repo := &mockDocumentRepo{
		listByPermittedFn: func(ctx context.Context, role string, limit int) ([]model.DocumentView, error) {
			gotRole, gotLimit = role, limit
			return []model.DocumentView{
				{Content: "This is for the fans", Permitted: "regular"},
				{Content: "This is owned by the footballer", Permitted: "regular"},
			}, nil
		},
	}

	svc := NewService(repo, &mockRoleEnsurer{}, nil, nil)

	views, err := svc.GetAllByRole(context.Background(), "regular", 10)
	if err != nil {
		t.Fatalf("GetAllByRole error: %v", err)
	}
	if gotRole != "regular" || gotLimit != 10 {
		t.Errorf("filter = (%q, %d), want (regular, 10)", gotRole, gotLimit)
	}
	for _, v := range views {
		if v.Permitted != "regular" {
			t.Errorf("Permitted = %q, want %q", v.Permitted, "regular")
		}
	}
}

// GetAllByDateが入力日付を正規化してから照合することを検証する。
func TestService_GetAllByDate_NormalizesInput(t *testing.T) {
	var gotDate string
	repo := &mockDocumentRepo{
		listByDateFn: func(ctx context.Context, date string, limit int) ([]model.DocumentView, error) {
			gotDate = date
			return nil, nil
		},
	}

	svc := NewService(repo, &mockRoleEnsurer{}, nil, nil)

	// ゼロ埋め形式で渡しても採番と同じ正規形で照合されること
	if _, err := svc.GetAllByDate(context.Background(), "2024-03-07", 3); err != nil {
		t.Fatalf("GetAllByDate error: %v", err)
	}
	if gotDate != "2024-3-7" {
		t.Errorf("queried date = %q, want %q", gotDate, "2024-3-7")
	}
}

// 解釈できない日付入力はINVALID_DATEエラーになることを検証する。
func TestService_GetAllByDate_InvalidInput(t *testing.T) {
	svc := NewService(&mockDocumentRepo{}, &mockRoleEnsurer{}, nil, nil)

	_, err := svc.GetAllByDate(context.Background(), "yesterday", 3)
	storeErr, ok := err.(*model.StoreError)
	if !ok {
		t.Fatalf("error type = %T, want *StoreError", err)
	}
	if storeErr.Code != model.ErrCodeInvalidDate {
		t.Errorf("code = %q, want %q", storeErr.Code, model.ErrCodeInvalidDate)
	}
}

// DropAll後の問い合わせは空の結果（フォールトではない）になることを検証する。
func TestService_DropAll_ThenEmptyQueries(t *testing.T) {
	deleted := false
	repo := &mockDocumentRepo{
		deleteAllFn: func(ctx context.Context) error {
			deleted = true
			return nil
		},
		listFn: func(ctx context.Context, limit int) ([]model.DocumentView, error) {
			return nil, nil
		},
	}

	svc := NewService(repo, &mockRoleEnsurer{}, nil, nil)

	if err := svc.DropAll(context.Background()); err != nil {
		t.Fatalf("DropAll error: %v", err)
	}
	if !deleted {
		t.Fatal("expected DeleteAll to be called")
	}

	views, err := svc.GetAll(context.Background(), -1)
	if err != nil {
		t.Fatalf("GetAll after drop error: %v", err)
	}
	if len(views) != 0 {
		t.Errorf("len = %d, want 0", len(views))
	}
}
