package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/ewillweb/internal/db"
	"github.com/ewillweb/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	got []notify.ContactNotification
	err error
}

func (r *recordingNotifier) Enqueue(n notify.ContactNotification) error {
	r.got = append(r.got, n)
	return r.err
}

var submissionIDPattern = regexp.MustCompile(`^sub_[a-z0-9]+$`)

func TestEscapeHTML(t *testing.T) {
	out := EscapeHTML(`  <script>alert("x") & 'y'</script>  `)
	assert.Equal(t, "&lt;script&gt;alert(&quot;x&quot;) &amp; &#x27;y&#x27;&lt;/script&gt;", out)
	for _, ch := range []string{"<", ">", `"`, "'"} {
		assert.NotContains(t, out, ch)
	}
	// 只转义一遍
	assert.Equal(t, "&amp;amp;", EscapeHTML("&amp;"))
}

func TestNewSubmissionID(t *testing.T) {
	now := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	id := newSubmissionID(now)
	assert.Regexp(t, submissionIDPattern, id)
	assert.True(t, strings.HasPrefix(id, "sub_m7pwwe80"), id)
	assert.Len(t, id, len("sub_m7pwwe80")+6)
}

func TestContactSubmitPersistsAndNotifies(t *testing.T) {
	gdb := setupServiceTestDB(t)
	notifier := &recordingNotifier{}
	svc := NewContactService(NewGormSubmissionStore(gdb), notifier, nil)

	receipt, err := svc.Submit(context.Background(), ContactForm{
		Name:    "  王<b>小明</b> ",
		Email:   " Ming@Example.COM ",
		Phone:   "+886 (2) 1234-5678",
		Company: "Ewill & Co",
		Message: "請聯絡我",
	}, "203.0.113.5")
	require.NoError(t, err)
	assert.Regexp(t, submissionIDPattern, receipt.SubmissionID)
	assert.True(t, receipt.Submitted)
	assert.Equal(t, contactThanks, receipt.Message)

	var saved db.ContactSubmission
	require.NoError(t, gdb.Where("submission_id = ?", receipt.SubmissionID).First(&saved).Error)
	assert.Equal(t, "王&lt;b&gt;小明&lt;/b&gt;", saved.Name)
	assert.Equal(t, "ming@example.com", saved.Email)
	require.NotNil(t, saved.Company)
	assert.Equal(t, "Ewill &amp; Co", *saved.Company)
	require.NotNil(t, saved.IPAddress)
	assert.Equal(t, "203.0.113.5", *saved.IPAddress)

	require.Len(t, notifier.got, 1)
	assert.Equal(t, "王<b>小明</b>", notifier.got[0].Name)
	assert.Equal(t, receipt.SubmissionID, notifier.got[0].SubmissionID)
}

func TestContactSubmitValidation(t *testing.T) {
	svc := NewContactService(MockSubmissionStore{}, nil, nil)

	_, err := svc.Submit(context.Background(), ContactForm{Name: "", Email: "bad", Message: ""}, "")
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)

	fields := map[string]string{}
	for _, fe := range verr.Errors {
		fields[fe.Field] = fe.Rule
	}
	assert.Equal(t, "required", fields["name"])
	assert.Equal(t, "email", fields["email"])
	assert.Equal(t, "required", fields["message"])

	_, err = svc.Submit(context.Background(), ContactForm{
		Name:    strings.Repeat("名", 101),
		Email:   "a@b.com",
		Phone:   "call me",
		Message: strings.Repeat("x", 2001),
	}, "")
	require.True(t, errors.As(err, &verr))
	fields = map[string]string{}
	for _, fe := range verr.Errors {
		fields[fe.Field] = fe.Rule
	}
	assert.Equal(t, "max", fields["name"])
	assert.Equal(t, "phone", fields["phone"])
	assert.Equal(t, "max", fields["message"])

	_, err = svc.Submit(context.Background(), ContactForm{Name: strings.Repeat("名", 100), Email: "a@b.com", Message: "hi"}, "")
	assert.NoError(t, err)
}

func TestContactSubmitMockMode(t *testing.T) {
	notifier := &recordingNotifier{}
	svc := NewContactService(MockSubmissionStore{}, notifier, nil)

	receipt, err := svc.Submit(context.Background(), ContactForm{Name: "A", Email: "a@b.com", Message: "hi"}, "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(receipt.Message, "[Mock]"))
	assert.Empty(t, notifier.got)
}

func TestContactSubmitIgnoresNotifierFailure(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewContactService(NewGormSubmissionStore(gdb), &recordingNotifier{err: notify.ErrQueueFull}, nil)

	receipt, err := svc.Submit(context.Background(), ContactForm{Name: "A", Email: "a@b.com", Message: "hi"}, "")
	require.NoError(t, err)
	assert.True(t, receipt.Submitted)
}

func TestListSubmissions(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewContactService(NewGormSubmissionStore(gdb), nil, nil)
	base := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		offset := time.Duration(i) * time.Minute
		svc.now = func() time.Time { return base.Add(offset) }
		_, err := svc.Submit(context.Background(), ContactForm{Name: "A", Email: "a@b.com", Message: "hi"}, "")
		require.NoError(t, err)
	}

	list, err := svc.ListSubmissions(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, list.Total)
	assert.Len(t, list.Items, 2)
	assert.True(t, list.HasMore)
	assert.Equal(t, "2025-03-01T08:02:00.000Z", list.Items[0].CreatedAt)
}
