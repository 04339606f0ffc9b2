package domain

import "context"

// CertificateRepository is the port for certificate persistence. Create must
// map a unique violation on Number to ErrDuplicateNumber so the allocation
// loop in the service can retry.
type CertificateRepository interface {
	Create(ctx context.Context, cert *Certificate) error
	FindByID(ctx context.Context, id int64) (*Certificate, error)
	MaxNumber(ctx context.Context) (int64, error)
	Update(ctx context.Context, cert *Certificate) error
}
