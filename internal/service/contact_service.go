package service

import (
	"context"
	"crypto/rand"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/ewillweb/internal/db"
	"github.com/ewillweb/internal/logger"
	"github.com/ewillweb/internal/notify"
	"gorm.io/gorm"
)

const (
	contactThanks     = "感謝您的來信，我們將盡快與您聯繫。"
	mockMessagePrefix = "[Mock] "
)

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
)

// EscapeHTML 去掉首尾空白并转义 & < > " '，只做一遍。
func EscapeHTML(input string) string {
	return htmlEscaper.Replace(strings.TrimSpace(input))
}

// ContactForm 是联系表单的请求体。
type ContactForm struct {
	Name       string `json:"name" validate:"required,min=1,max=100"`
	Email      string `json:"email" validate:"required,email,max=255"`
	Phone      string `json:"phone" validate:"omitempty,max=20,phone"`
	Company    string `json:"company" validate:"omitempty,max=100"`
	Message    string `json:"message" validate:"required,min=1,max=2000"`
	SourcePage string `json:"source_page" validate:"omitempty,max=255"`
}

// ContactReceipt 是提交成功后的响应。
type ContactReceipt struct {
	SubmissionID string `json:"submission_id"`
	Submitted    bool   `json:"submitted"`
	Message      string `json:"message"`
}

// SubmissionStore 保存联系表单提交。
type SubmissionStore interface {
	Insert(ctx context.Context, submission *db.ContactSubmission) error
	List(ctx context.Context, page, pageSize int) ([]db.ContactSubmission, int64, error)
	Persistent() bool
}

// Notifier 接收需要发送邮件的提交，入队失败不影响提交结果。
type Notifier interface {
	Enqueue(n notify.ContactNotification) error
}

// ContactService 处理联系表单：校验、清洗、保存、通知。
type ContactService struct {
	store    SubmissionStore
	notifier Notifier
	log      *logger.Logger
	now      func() time.Time
}

// NewContactService 创建服务，notifier 可以为空。
func NewContactService(store SubmissionStore, notifier Notifier, log *logger.Logger) *ContactService {
	if log == nil {
		log = logger.Nop()
	}
	return &ContactService{store: store, notifier: notifier, log: log, now: time.Now}
}

// Submit 保存一次提交。只有数据库写入属于成功条件，邮件在后台发送。
func (s *ContactService) Submit(ctx context.Context, form ContactForm, ipAddress string) (*ContactReceipt, error) {
	form.Name = strings.TrimSpace(form.Name)
	form.Email = strings.TrimSpace(form.Email)
	form.Phone = strings.TrimSpace(form.Phone)
	form.Company = strings.TrimSpace(form.Company)
	form.Message = strings.TrimSpace(form.Message)
	form.SourcePage = strings.TrimSpace(form.SourcePage)
	if err := validateStruct(form); err != nil {
		return nil, err
	}

	now := s.now()
	submission := &db.ContactSubmission{
		SubmissionID: newSubmissionID(now),
		Name:         EscapeHTML(form.Name),
		Email:        strings.ToLower(form.Email),
		Phone:        EscapeHTML(form.Phone),
		Message:      EscapeHTML(form.Message),
		SourcePage:   form.SourcePage,
		CreatedAt:    now,
	}
	if form.Company != "" {
		company := EscapeHTML(form.Company)
		submission.Company = &company
	}
	if ip := strings.TrimSpace(ipAddress); ip != "" {
		submission.IPAddress = &ip
	}

	receipt := &ContactReceipt{
		SubmissionID: submission.SubmissionID,
		Submitted:    true,
		Message:      contactThanks,
	}

	if !s.store.Persistent() {
		receipt.Message = mockMessagePrefix + contactThanks
		s.log.Info("contact submission accepted in mock mode", "submission_id", submission.SubmissionID)
		return receipt, nil
	}

	if err := s.store.Insert(ctx, submission); err != nil {
		return nil, err
	}
	s.log.Info("contact submission saved", "submission_id", submission.SubmissionID, "email", submission.Email)

	if s.notifier != nil {
		err := s.notifier.Enqueue(notify.ContactNotification{
			SubmissionID: submission.SubmissionID,
			Name:         form.Name,
			Email:        submission.Email,
			Phone:        form.Phone,
			Company:      form.Company,
			Message:      form.Message,
			SourcePage:   form.SourcePage,
			SubmittedAt:  now,
		})
		if err != nil {
			s.log.Warn("contact notification not queued", "submission_id", submission.SubmissionID, "error", err)
		}
	}
	return receipt, nil
}

// SubmissionView 是后台列表中的一条提交，文本字段保持转义后的形式。
type SubmissionView struct {
	SubmissionID string  `json:"submission_id"`
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Phone        string  `json:"phone,omitempty"`
	Company      *string `json:"company"`
	Message      string  `json:"message"`
	SourcePage   string  `json:"source_page,omitempty"`
	IPAddress    *string `json:"ip_address"`
	CreatedAt    string  `json:"created_at"`
}

// SubmissionList 是后台查看的分页结果。
type SubmissionList struct {
	Items    []SubmissionView `json:"items"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
	HasMore  bool             `json:"has_more"`
}

// ListSubmissions 按时间倒序分页列出提交记录。
func (s *ContactService) ListSubmissions(ctx context.Context, page, pageSize int) (SubmissionList, error) {
	page = normalizePage(page)
	if pageSize == 0 {
		pageSize = defaultPageSize
	}
	pageSize = clampPageSize(pageSize)
	items, total, err := s.store.List(ctx, page, pageSize)
	if err != nil {
		return SubmissionList{}, err
	}
	views := make([]SubmissionView, 0, len(items))
	for _, item := range items {
		views = append(views, SubmissionView{
			SubmissionID: item.SubmissionID,
			Name:         item.Name,
			Email:        item.Email,
			Phone:        item.Phone,
			Company:      item.Company,
			Message:      item.Message,
			SourcePage:   item.SourcePage,
			IPAddress:    item.IPAddress,
			CreatedAt:    formatISO(item.CreatedAt),
		})
	}
	return SubmissionList{
		Items:    views,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		HasMore:  hasMore(page, pageSize, len(items), total),
	}, nil
}

// newSubmissionID 生成 sub_<毫秒时间戳36进制><6位随机36进制>，不检查重复。
func newSubmissionID(now time.Time) string {
	var b strings.Builder
	b.WriteString("sub_")
	b.WriteString(strconv.FormatInt(now.UnixMilli(), 36))
	const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	limit := big.NewInt(int64(len(alphabet)))
	for i := 0; i < 6; i++ {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			b.WriteByte('0')
			continue
		}
		b.WriteByte(alphabet[n.Int64()])
	}
	return b.String()
}

// GormSubmissionStore 把提交写入数据库。
type GormSubmissionStore struct {
	db *gorm.DB
}

func NewGormSubmissionStore(gdb *gorm.DB) *GormSubmissionStore {
	return &GormSubmissionStore{db: gdb}
}

func (s *GormSubmissionStore) Insert(ctx context.Context, submission *db.ContactSubmission) error {
	return s.db.WithContext(ctx).Create(submission).Error
}

func (s *GormSubmissionStore) List(ctx context.Context, page, pageSize int) ([]db.ContactSubmission, int64, error) {
	query := s.db.WithContext(ctx).Model(&db.ContactSubmission{})
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var items []db.ContactSubmission
	if err := query.Order("created_at desc").Order("id desc").
		Limit(pageSize).Offset((page - 1) * pageSize).
		Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (s *GormSubmissionStore) Persistent() bool { return true }

// MockSubmissionStore 不保存任何数据。
type MockSubmissionStore struct{}

func (MockSubmissionStore) Insert(context.Context, *db.ContactSubmission) error { return nil }

func (MockSubmissionStore) List(context.Context, int, int) ([]db.ContactSubmission, int64, error) {
	return []db.ContactSubmission{}, 0, nil
}

func (MockSubmissionStore) Persistent() bool { return false }
