package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseModeratorReply(t *testing.T) {
	cases := []struct {
		reply        string
		agent        Agent
		topicChanged bool
	}{
		{"1 1", AgentTutor, true},
		{"3 0", AgentAnalyser, false},
		{"Режим: 2, смена темы: 1", AgentExaminer, true},
		{"5\n0", AgentSummarizer, false},
		{"4 1", AgentProblemSolver, true},
		{"7 0", AgentUnknown, false},
		{"0 1", AgentUnknown, true},
		{"ничего не понял", AgentUnknown, false},
		{"", AgentUnknown, false},
	}
	for _, tc := range cases {
		agent, topicChanged := parseModeratorReply(tc.reply)
		assert.Equal(t, tc.agent, agent, tc.reply)
		assert.Equal(t, tc.topicChanged, topicChanged, tc.reply)
	}
}
