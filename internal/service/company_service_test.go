package service

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/stagehub-api/internal/dto"
	"github.com/noah-isme/stagehub-api/internal/repository"
)

var samplePNG = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R', 0, 0, 0, 1, 0, 0, 0, 1, 8, 6, 0, 0, 0}

type stubLogoUploader struct {
	companyID uint
	size      int
	err       error
}

func (s *stubLogoUploader) UploadLogo(ctx context.Context, companyID uint, reader io.Reader) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	payload, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	s.companyID = companyID
	s.size = len(payload)
	return "https://res.cloudinary.test/logo.png", nil
}

func TestCompanyServiceUpdateProfile(t *testing.T) {
	db := setupServiceDB(t)
	company := seedCompany(t, db, "hr@acme.test")
	svc := NewCompanyService(repository.NewCompanyRepository(db), nil, testValidator(), testLogger())

	website := "https://acme.test"
	updated, err := svc.UpdateProfile(context.Background(), company.Principal(), dto.CompanyProfileUpdateRequest{Website: &website})
	require.NoError(t, err)
	require.Equal(t, website, updated.Website)
	require.Equal(t, "Acme", updated.Name)

	invalid := "not a url"
	_, err = svc.UpdateProfile(context.Background(), company.Principal(), dto.CompanyProfileUpdateRequest{Website: &invalid})
	require.Error(t, err)

	student := seedStudent(t, db, "ada@example.com", nil)
	_, err = svc.Profile(context.Background(), student.Principal())
	require.ErrorIs(t, err, ErrForbidden)
}

func TestCompanyServiceUploadLogo(t *testing.T) {
	db := setupServiceDB(t)
	company := seedCompany(t, db, "hr@acme.test")
	uploader := &stubLogoUploader{}
	svc := NewCompanyService(repository.NewCompanyRepository(db), uploader, testValidator(), testLogger())

	updated, err := svc.UploadLogo(context.Background(), company.Principal(), multipartFile(t, "logo", "logo.png", samplePNG))
	require.NoError(t, err)
	require.Equal(t, "https://res.cloudinary.test/logo.png", updated.LogoURL)
	require.Equal(t, company.Profile.ID, uploader.companyID)
	require.Equal(t, len(samplePNG), uploader.size)

	_, err = svc.UploadLogo(context.Background(), company.Principal(), multipartFile(t, "logo", "logo.png", []byte("plain text")))
	require.ErrorIs(t, err, ErrLogoInvalid)

	uploader.err = errors.New("cloudinary down")
	_, err = svc.UploadLogo(context.Background(), company.Principal(), multipartFile(t, "logo", "logo.png", samplePNG))
	require.Error(t, err)
}

func TestCompanyServiceUploadLogoDisabled(t *testing.T) {
	db := setupServiceDB(t)
	company := seedCompany(t, db, "hr@acme.test")
	svc := NewCompanyService(repository.NewCompanyRepository(db), nil, testValidator(), testLogger())

	_, err := svc.UploadLogo(context.Background(), company.Principal(), multipartFile(t, "logo", "logo.png", samplePNG))
	require.ErrorIs(t, err, ErrLogoUploadDisabled)
}
