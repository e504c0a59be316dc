package session

import (
	"context"
	"testing"
)

func TestUserFrom(t *testing.T) {
	if UserFrom(context.Background()) != nil {
		t.Fatal("expected no user on an empty context")
	}

	u := &User{ID: "u1", StripeCustomerID: "cus_1"}
	got := UserFrom(WithUser(context.Background(), u))
	if got != u {
		t.Fatalf("UserFrom = %v, want %v", got, u)
	}
}
