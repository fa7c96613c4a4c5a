package contract

import (
	"context"
	"time"

	"github.com/huangsam/repometrics/schema"
	"github.com/stretchr/testify/mock"
)

// MockRepoSource is a mock implementation of RepoSource for testing.
type MockRepoSource struct {
	mock.Mock
}

var _ RepoSource = &MockRepoSource{} // Compile-time check

// GetRepository implements the RepoSource interface.
func (m *MockRepoSource) GetRepository(ctx context.Context, owner, name string) (schema.RepositoryInfo, error) {
	ret := m.Called(ctx, owner, name)
	info, _ := ret.Get(0).(schema.RepositoryInfo)
	return info, ret.Error(1)
}

// ListLanguages implements the RepoSource interface.
func (m *MockRepoSource) ListLanguages(ctx context.Context, owner, name string) (schema.LanguageBreakdown, error) {
	ret := m.Called(ctx, owner, name)
	langs, _ := ret.Get(0).(schema.LanguageBreakdown)
	return langs, ret.Error(1)
}

// ListCommits implements the RepoSource interface.
func (m *MockRepoSource) ListCommits(ctx context.Context, owner, name string) ([]schema.CommitInfo, error) {
	ret := m.Called(ctx, owner, name)
	commits, _ := ret.Get(0).([]schema.CommitInfo)
	return commits, ret.Error(1)
}

// ListContributorStats implements the RepoSource interface.
func (m *MockRepoSource) ListContributorStats(ctx context.Context, owner, name string) ([]schema.ContributorStat, error) {
	ret := m.Called(ctx, owner, name)
	stats, _ := ret.Get(0).([]schema.ContributorStat)
	return stats, ret.Error(1)
}

// MockPageSource is a mock implementation of PageSource for testing.
type MockPageSource struct {
	mock.Mock
}

var _ PageSource = &MockPageSource{} // Compile-time check

// FetchPage implements the PageSource interface.
func (m *MockPageSource) FetchPage(ctx context.Context, url string) ([]byte, error) {
	ret := m.Called(ctx, url)
	body, _ := ret.Get(0).([]byte)
	return body, ret.Error(1)
}

// MockCodeCounter is a mock implementation of CodeCounter for testing.
type MockCodeCounter struct {
	mock.Mock
}

var _ CodeCounter = &MockCodeCounter{} // Compile-time check

// Count implements the CodeCounter interface.
func (m *MockCodeCounter) Count(ctx context.Context, location string) (schema.CodeMetrics, error) {
	ret := m.Called(ctx, location)
	metrics, _ := ret.Get(0).(schema.CodeMetrics)
	return metrics, ret.Error(1)
}

// MockRowStore is a mock implementation of RowStore for testing.
type MockRowStore struct {
	mock.Mock
}

var _ RowStore = &MockRowStore{} // Compile-time check

// Append implements the RowStore interface.
func (m *MockRowStore) Append(row []string) error {
	ret := m.Called(row)
	return ret.Error(0)
}

// Close implements the RowStore interface.
func (m *MockRowStore) Close() error {
	ret := m.Called()
	return ret.Error(0)
}

// MockRunStore is a mock implementation of RunStore for testing.
type MockRunStore struct {
	mock.Mock
}

var _ RunStore = &MockRunStore{} // Compile-time check

// BeginRun implements the RunStore interface.
func (m *MockRunStore) BeginRun(startTime time.Time, configParams map[string]any) (int64, error) {
	ret := m.Called(startTime, configParams)
	return ret.Get(0).(int64), ret.Error(1)
}

// RecordRepoResult implements the RunStore interface.
func (m *MockRunStore) RecordRepoResult(runID int64, result schema.RepoResult) error {
	ret := m.Called(runID, result)
	return ret.Error(0)
}

// EndRun implements the RunStore interface.
func (m *MockRunStore) EndRun(runID int64, endTime time.Time, summary schema.BatchSummary) error {
	ret := m.Called(runID, endTime, summary)
	return ret.Error(0)
}

// GetStatus implements the RunStore interface.
func (m *MockRunStore) GetStatus() (schema.RunStatus, error) {
	ret := m.Called()
	return ret.Get(0).(schema.RunStatus), ret.Error(1)
}

// GetAllRuns implements the RunStore interface.
func (m *MockRunStore) GetAllRuns() ([]schema.RunRecord, error) {
	ret := m.Called()
	runs, _ := ret.Get(0).([]schema.RunRecord)
	return runs, ret.Error(1)
}

// GetAllRepoResults implements the RunStore interface.
func (m *MockRunStore) GetAllRepoResults() ([]schema.RepoResultRecord, error) {
	ret := m.Called()
	results, _ := ret.Get(0).([]schema.RepoResultRecord)
	return results, ret.Error(1)
}

// Close implements the RunStore interface.
func (m *MockRunStore) Close() error {
	ret := m.Called()
	return ret.Error(0)
}
