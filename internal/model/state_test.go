package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeStateTotal(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"nil input", ""},
		{"json null", "null"},
		{"corrupt json", "{not json"},
		{"not an object", `"hello"`},
		{"empty object", "{}"},
		{"unknown keys only", `{"foo": 1, "bar": {"baz": 2}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			state := NormalizeState([]byte(tc.raw))
			assert.NotNil(t, state.TutorHistory)
			assert.Nil(t, state.LastTopic)
			assert.Nil(t, state.CurrentTest)
			assert.False(t, state.ProblemSolver.Active)
			assert.NotNil(t, state.ProblemSolver.Steps)
			assert.Equal(t, 0, state.ProblemSolver.CurrentStep)
		})
	}
}

func TestNormalizeStatePartialProblemSolver(t *testing.T) {
	raw := `{"problem_solver": {"active": true, "steps": ["шаг 1", "шаг 2"]}}`
	state := NormalizeState([]byte(raw))

	assert.True(t, state.ProblemSolver.Active)
	assert.Equal(t, []string{"шаг 1", "шаг 2"}, state.ProblemSolver.Steps)
	// 缺失的嵌套字段逐项补默认值
	assert.Nil(t, state.ProblemSolver.Topic)
	assert.Equal(t, 0, state.ProblemSolver.CurrentStep)
}

func TestNormalizeStateCurrentTest(t *testing.T) {
	raw := `{"current_test": {"1": "a", "x": "b", "2": "C"}}`
	state := NormalizeState([]byte(raw))

	require.NotNil(t, state.CurrentTest)
	assert.Equal(t, map[int]string{1: "A", 2: "C"}, state.CurrentTest)
}

func TestNormalizeStateEmptyTestBecomesNil(t *testing.T) {
	state := NormalizeState([]byte(`{"current_test": {}}`))
	assert.Nil(t, state.CurrentTest)

	// 全部键都不可解析时同样归为"没有测试"
	state = NormalizeState([]byte(`{"current_test": {"abc": "a"}}`))
	assert.Nil(t, state.CurrentTest)
}

func TestNormalizeStateIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"null",
		"{}",
		`{"tutor_history": [{"role": "user", "content": "привет"}], "last_topic": "космос"}`,
		`{"current_test": {"1": "a", "x": "b", "2": "C"}}`,
		`{"problem_solver": {"active": true, "topic": "дроби", "steps": ["s1"], "current_step": 1}}`,
	}
	for _, raw := range inputs {
		once := NormalizeState([]byte(raw))
		serialized, err := once.Marshal()
		require.NoError(t, err)
		twice := NormalizeState([]byte(serialized))
		assert.Equal(t, once, twice, "normalize must be idempotent for %q", raw)
	}
}

func TestNormalizeStateClampsSolverStep(t *testing.T) {
	// шаг за пределами списка выправляется на последний
	state := NormalizeState([]byte(`{"problem_solver": {"active": true, "steps": ["один"], "current_step": 7}}`))
	assert.Equal(t, 0, state.ProblemSolver.CurrentStep)
	assert.True(t, state.ProblemSolver.Active)

	// отрицательный шаг выправляется в ноль
	state = NormalizeState([]byte(`{"problem_solver": {"active": true, "steps": ["a", "b"], "current_step": -5}}`))
	assert.Equal(t, 0, state.ProblemSolver.CurrentStep)

	// пустой список шагов: индекс просто обнуляется
	state = NormalizeState([]byte(`{"problem_solver": {"current_step": 3}}`))
	assert.Equal(t, 0, state.ProblemSolver.CurrentStep)
}

func TestNormalizeStateScalarTestValues(t *testing.T) {
	// нестроковые значения приводятся к строке, а не выбрасываются
	state := NormalizeState([]byte(`{"current_test": {"1": 2, "2": "b", "3": true}}`))
	assert.Equal(t, map[int]string{1: "2", 2: "B", 3: "TRUE"}, state.CurrentTest)
}
