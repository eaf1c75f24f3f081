// Package mocks provides generated mock implementations for testing.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for the
// auth ports. The mocks are generated using go:generate directives and provide a
// fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	mockProvider := mocks.NewMockIdentityProvider(ctrl)
//	mockProvider.EXPECT().Authenticate(gomock.Any(), "alice", gomock.Any()).Return(identity, nil)
package mocks

// Generate mocks for the auth ports from internal/ports:
// IdentityProvider, IdentityDirectory, and KeyValueStore.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=ports_mock.go github.com/parceldesk/ops-api/internal/ports IdentityProvider,IdentityDirectory,KeyValueStore
