package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lumira-go/internal/model"
)

func strPtr(s string) *string { return &s }

func TestProgressReportEmpty(t *testing.T) {
	svc := NewProgressService(&fakeTestResultRepo{})

	report, err := svc.Report("")
	require.NoError(t, err)
	assert.Equal(t, "Пока нет ни одного завершённого теста.", report)

	report, err = svc.Report("алгебра")
	require.NoError(t, err)
	assert.Equal(t, "Пока нет ни одного теста по теме, содержащей: 'алгебра'.", report)
}

func TestProgressReportOrderAndAverage(t *testing.T) {
	// репозиторий отдаёт свежие первыми
	repo := &fakeTestResultRepo{recent: []model.TestResult{
		{Topic: strPtr("Проценты"), Score: 5, Total: 5, Percent: 100},
		{Topic: strPtr("Дроби"), Score: 1, Total: 3, Percent: 33},
		{Topic: nil, Score: 2, Total: 4, Percent: 50},
	}}
	svc := NewProgressService(repo)

	report, err := svc.Report("")
	require.NoError(t, err)

	// от старых к новым: безымянный, Дроби, Проценты
	first := "• Без темы: 2/4 (50%)"
	second := "• Дроби: 1/3 (33%)"
	third := "• Проценты: 5/5 (100%)"
	assert.Contains(t, report, first)
	assert.Contains(t, report, second)
	assert.Contains(t, report, third)
	assert.Less(t, strings.Index(report, first), strings.Index(report, second))
	assert.Less(t, strings.Index(report, second), strings.Index(report, third))

	// 8/12 = 66.6% → пол, не округление
	assert.Contains(t, report, "Средний результат: 66%")
}

