package service

import (
	"bytes"
	"context"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/stagehub-api/internal/dto"
	"github.com/noah-isme/stagehub-api/internal/models"
	"github.com/noah-isme/stagehub-api/internal/repository"
	"github.com/noah-isme/stagehub-api/internal/storage"
)

const samplePDF = "%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n"

type stubEnqueuer struct {
	students []uint
	batches  int
}

func (s *stubEnqueuer) EnqueueStudent(ctx context.Context, studentID uint) error {
	s.students = append(s.students, studentID)
	return nil
}

func (s *stubEnqueuer) EnqueueBatch(ctx context.Context) error {
	s.batches++
	return nil
}

func multipartFile(t *testing.T, field, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	form, err := multipart.NewReader(body, writer.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	require.Len(t, form.File[field], 1)
	return form.File[field][0]
}

func newStudentServiceForTest(t *testing.T) (StudentService, *stubEnqueuer, storage.Store, fixtureStudent, repository.CVSummaryRepository) {
	t.Helper()
	db := setupServiceDB(t)
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	jobs := &stubEnqueuer{}
	summaries := repository.NewCVSummaryRepository(db)
	svc := NewStudentService(repository.NewStudentRepository(db), summaries, store, jobs, 1024, testValidator(), testLogger())
	return svc, jobs, store, seedStudent(t, db, "ada@example.com", nil), summaries
}

func TestStudentServiceUploadCVStoresAndEnqueues(t *testing.T) {
	svc, jobs, store, student, _ := newStudentServiceForTest(t)

	first, err := svc.UploadCV(context.Background(), student.Principal(), multipartFile(t, "cv", "cv.pdf", []byte(samplePDF)))
	require.NoError(t, err)
	require.True(t, first.HasCV)
	require.Equal(t, []uint{student.Profile.ID}, jobs.students)

	profile, err := svc.Profile(context.Background(), student.Principal())
	require.NoError(t, err)
	require.True(t, profile.HasCV)

	impl := svc.(*studentService)
	stored, err := impl.students.FindByID(context.Background(), student.Profile.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.CVPath)
	oldPath := *stored.CVPath

	_, err = svc.UploadCV(context.Background(), student.Principal(), multipartFile(t, "cv", "cv-v2.pdf", []byte(samplePDF)))
	require.NoError(t, err)

	exists, err := store.Exists(context.Background(), oldPath)
	require.NoError(t, err)
	require.False(t, exists)
	require.Len(t, jobs.students, 2)
}

func TestStudentServiceUploadCVRejectsNonPDF(t *testing.T) {
	svc, jobs, _, student, _ := newStudentServiceForTest(t)

	_, err := svc.UploadCV(context.Background(), student.Principal(), multipartFile(t, "cv", "cv.pdf", []byte("just some plain text")))
	require.ErrorIs(t, err, ErrCVNotPDF)
	require.Empty(t, jobs.students)

	_, err = svc.UploadCV(context.Background(), student.Principal(), multipartFile(t, "cv", "big.pdf", bytes.Repeat([]byte("a"), 2048)))
	require.ErrorIs(t, err, ErrCVTooLarge)

	_, err = svc.UploadCV(context.Background(), student.Principal(), nil)
	require.ErrorIs(t, err, ErrCVRequired)
}

func TestStudentServiceRequiresStudentRole(t *testing.T) {
	svc, _, _, student, _ := newStudentServiceForTest(t)

	_, err := svc.Profile(context.Background(), models.Principal{UserID: student.User.ID, Role: models.RoleCompany})
	require.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Profile(context.Background(), models.Principal{UserID: 9999, Role: models.RoleStudent})
	require.ErrorIs(t, err, ErrStudentNotFound)
}

func TestStudentServiceUpdateProfileAndSkills(t *testing.T) {
	svc, _, _, student, _ := newStudentServiceForTest(t)

	city := "  Paris "
	updated, err := svc.UpdateProfile(context.Background(), student.Principal(), dto.StudentProfileUpdateRequest{City: &city})
	require.NoError(t, err)
	require.Equal(t, "Paris", updated.City)
	require.Equal(t, "Ada", updated.FirstName)

	skills, err := svc.ReplaceSkills(context.Background(), student.Principal(), dto.SkillsReplaceRequest{Skills: []dto.SkillInput{
		{Name: "Go", Level: 4},
		{Name: "SQL", Level: 2},
	}})
	require.NoError(t, err)
	require.Len(t, skills, 2)

	_, err = svc.ReplaceSkills(context.Background(), student.Principal(), dto.SkillsReplaceRequest{Skills: []dto.SkillInput{{Name: "Go", Level: 9}}})
	require.Error(t, err)
}

func TestStudentServiceCVSummary(t *testing.T) {
	svc, _, _, student, summaries := newStudentServiceForTest(t)

	_, err := svc.CVSummary(context.Background(), student.Principal())
	require.ErrorIs(t, err, ErrCVSummaryNotFound)

	record := models.CVSummary{StudentProfileID: student.Profile.ID, Summary: "Backend profile", Processed: true}
	require.NoError(t, summaries.Upsert(context.Background(), &record))

	summary, err := svc.CVSummary(context.Background(), student.Principal())
	require.NoError(t, err)
	require.Equal(t, "Backend profile", summary.Summary)
	require.True(t, summary.Processed)
}
