package scoring

import (
	"testing"

	"github.com/jonathan/interview-coach/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(index int, skill string, obtained, total int) types.ScoreEntry {
	return types.ScoreEntry{QuestionIndex: index, Skill: skill, ScoreObtained: obtained, ScoreTotal: total}
}

func TestAggregate_Empty(t *testing.T) {
	agg := Aggregate(nil)

	assert.Empty(t, agg.PerSkill)
	assert.NotNil(t, agg.PerSkill)
	assert.Equal(t, 0, agg.OverallObtained)
	assert.Equal(t, 0, agg.OverallTotal)
	assert.Equal(t, 0.0, agg.OverallPercent)
}

func TestAggregate_GroupsInFirstAppearanceOrder(t *testing.T) {
	agg := Aggregate([]types.ScoreEntry{
		entry(0, "Python", 4, 5),
		entry(1, "Sql", 2, 5),
		entry(2, "Python", 3, 5),
		entry(3, "Aws", 0, 5),
	})

	require.Len(t, agg.PerSkill, 3)
	assert.Equal(t, []string{"Python", "Sql", "Aws"}, []string{agg.PerSkill[0].Skill, agg.PerSkill[1].Skill, agg.PerSkill[2].Skill})
	assert.Equal(t, types.SkillScore{Skill: "Python", Obtained: 7, Total: 10, Percent: 70}, agg.PerSkill[0])
	assert.Equal(t, types.SkillScore{Skill: "Sql", Obtained: 2, Total: 5, Percent: 40}, agg.PerSkill[1])
	assert.Equal(t, types.SkillScore{Skill: "Aws", Obtained: 0, Total: 5, Percent: 0}, agg.PerSkill[2])
	assert.Equal(t, 9, agg.OverallObtained)
	assert.Equal(t, 20, agg.OverallTotal)
	assert.InDelta(t, 45.0, agg.OverallPercent, 1e-9)
}

func TestAggregate_SumsMatchOverall(t *testing.T) {
	entries := []types.ScoreEntry{
		entry(0, "Go", 1, 5), entry(1, "Docker", 5, 5), entry(2, "Go", 2, 5),
		entry(3, "Docker", 3, 5), entry(4, "React", 4, 5),
	}
	agg := Aggregate(entries)

	var obtained, total int
	for _, s := range agg.PerSkill {
		obtained += s.Obtained
		total += s.Total
	}
	assert.Equal(t, agg.OverallObtained, obtained)
	assert.Equal(t, agg.OverallTotal, total)
}

func TestAggregate_ZeroTotalSkill(t *testing.T) {
	agg := Aggregate([]types.ScoreEntry{entry(0, "General", 0, 0)})

	require.Len(t, agg.PerSkill, 1)
	assert.Equal(t, 0.0, agg.PerSkill[0].Percent)
	assert.Equal(t, 0.0, agg.OverallPercent)
}

func TestAggregate_RepeatedSubmissionsCountUnderAppend(t *testing.T) {
	entries := []types.ScoreEntry{entry(0, "Go", 1, 5), entry(0, "Go", 4, 5)}

	agg := Apply(PolicyAppend, entries)

	assert.Equal(t, 5, agg.OverallObtained)
	assert.Equal(t, 10, agg.OverallTotal)
}

func TestApply_Latest(t *testing.T) {
	entries := []types.ScoreEntry{
		entry(0, "Go", 1, 5),
		entry(1, "Sql", 3, 5),
		entry(0, "Go", 4, 5),
	}

	agg := Apply(PolicyLatest, entries)

	assert.Equal(t, 7, agg.OverallObtained)
	assert.Equal(t, 10, agg.OverallTotal)
	require.Len(t, agg.PerSkill, 2)
	assert.Equal(t, "Sql", agg.PerSkill[0].Skill)
	assert.Equal(t, "Go", agg.PerSkill[1].Skill)
}

func TestLatest_LeavesInputUntouched(t *testing.T) {
	entries := []types.ScoreEntry{entry(0, "Go", 1, 5), entry(0, "Go", 2, 5)}

	kept := Latest(entries)

	assert.Len(t, entries, 2)
	assert.Equal(t, []types.ScoreEntry{entry(0, "Go", 2, 5)}, kept)
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    Policy
		wantErr bool
	}{
		{in: "", want: PolicyAppend},
		{in: "append", want: PolicyAppend},
		{in: " Latest ", want: PolicyLatest},
		{in: "max", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePolicy(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 0.0, Percent(3, 0))
	assert.Equal(t, 100.0, Percent(5, 5))
	assert.InDelta(t, 33.333, Percent(1, 3), 0.001)
}
