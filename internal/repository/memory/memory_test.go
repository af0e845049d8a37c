package memory

import (
	"testing"

	"github.com/iliyamo/kit-rental/internal/repository/repotest"
)

func TestBookingRepo(t *testing.T) {
	repotest.RunBookingRepo(t, func(*testing.T) repotest.BookingRepo { return NewBookingRepo() })
}

func TestUserRepo(t *testing.T) {
	repotest.RunUserRepo(t, func(*testing.T) repotest.UserRepo { return NewUserRepo() })
}
