package ai

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lettercraft/internal/config"
	"lettercraft/internal/errors"
	"lettercraft/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePrompt() types.LetterPrompt {
	return types.LetterPrompt{
		JobTitle:       "Développeur Go",
		CompanyName:    "Acme",
		JobDescription: "Nous cherchons un développeur backend.",
		Profile: types.CandidateProfile{
			FirstName: "Camille",
			LastName:  "Martin",
			Title:     "Ingénieure logiciel",
			Skills:    []string{"Go", "PostgreSQL"},
		},
		Tone: types.ToneEnthusiastic,
	}
}

func TestLetterPrompts(t *testing.T) {
	b := newPromptBuilder(nil)

	system, user, err := b.letter(samplePrompt())
	require.NoError(t, err)

	assert.Equal(t, DefaultPrompts.System, system)
	assert.Contains(t, user, "POSTE: Développeur Go")
	assert.Contains(t, user, "ENTREPRISE: Acme")
	assert.Contains(t, user, "SECTEUR: Non spécifié")
	assert.Contains(t, user, "- Nom: Camille Martin")
	assert.Contains(t, user, "- Compétences clés: Go, PostgreSQL")
	assert.Contains(t, user, "- Bio: Non spécifié")
	assert.Contains(t, user, "- "+ToneInstructions[types.ToneEnthusiastic])
	assert.NotContains(t, user, "NOTES PERSONNELLES")
	assert.NotContains(t, user, "<no value>")
}

func TestLetterPromptsPersonalNotes(t *testing.T) {
	p := samplePrompt()
	p.PersonalNotes = "  J'ai rencontré l'équipe au salon.  "

	_, user, err := newPromptBuilder(nil).letter(p)
	require.NoError(t, err)
	assert.Contains(t, user, "NOTES PERSONNELLES DU CANDIDAT:\nJ'ai rencontré l'équipe au salon.")
}

func TestSectorAddendum(t *testing.T) {
	tests := []struct {
		industry string
		want     string
	}{
		{"tech", "SPÉCIALISATION TECH:"},
		{" Marketing ", "SPÉCIALISATION MARKETING:"},
		{"sales", "SPÉCIALISATION VENTE:"},
		{"Vente", "SPÉCIALISATION VENTE:"},
		{"FINANCE", "SPÉCIALISATION FINANCE:"},
		{"santé", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.industry, func(t *testing.T) {
			got := SectorAddendum(tt.industry)
			if tt.want == "" {
				assert.Empty(t, got)
				return
			}
			assert.True(t, strings.HasPrefix(got, tt.want))
		})
	}
}

func TestLetterPromptsAppendSector(t *testing.T) {
	p := samplePrompt()
	p.Industry = "tech"

	system, user, err := newPromptBuilder(nil).letter(p)
	require.NoError(t, err)
	assert.Equal(t, DefaultPrompts.System+"\n\n"+SectorAddendum("tech"), system)
	assert.Contains(t, user, "SECTEUR: tech")
}

func TestToneInstructionDefault(t *testing.T) {
	assert.Equal(t, ToneInstructions[types.ToneProfessional], ToneInstruction(""))
	assert.Equal(t, ToneInstructions[types.ToneFormal], ToneInstruction(types.ToneFormal))
	for _, tone := range types.Tones {
		assert.NotEmpty(t, ToneInstructions[tone], tone)
	}
}

func TestImprovePrompts(t *testing.T) {
	system, user, err := newPromptBuilder(nil).improve("Ma lettre.", []string{"Ajouter des chiffres", "Raccourcir"})
	require.NoError(t, err)

	assert.Equal(t, DefaultPrompts.ImproveSystem, system)
	assert.Contains(t, user, "LETTRE ACTUELLE:\nMa lettre.")
	assert.Contains(t, user, "SUGGESTIONS D'AMÉLIORATION:\n- Ajouter des chiffres\n- Raccourcir\n\nINSTRUCTIONS:")
}

func TestPromptOverridesFromStore(t *testing.T) {
	dir := t.TempDir()
	userFile := filepath.Join(dir, "user.tmpl")
	require.NoError(t, os.WriteFile(userFile, []byte("Lettre pour {{.CompanyName}} ({{.ToneInstruction}})"), 0o600))

	store, err := config.NewPromptStore(config.PromptConfig{
		System:   "Système personnalisé",
		UserFile: userFile,
	})
	require.NoError(t, err)

	system, user, err := newPromptBuilder(store).letter(samplePrompt())
	require.NoError(t, err)
	assert.Equal(t, "Système personnalisé", system)
	assert.Equal(t, "Lettre pour Acme ("+ToneInstructions[types.ToneEnthusiastic]+")", user)

	// reloaded files replace the rendered template
	require.NoError(t, os.WriteFile(userFile, []byte("Pour {{.JobTitle}}"), 0o600))
	require.NoError(t, store.Reload())
	_, user, err = newPromptBuilder(store).letter(samplePrompt())
	require.NoError(t, err)
	assert.Equal(t, "Pour Développeur Go", user)
}

func TestInvalidPromptTemplate(t *testing.T) {
	store, err := config.NewPromptStore(config.PromptConfig{User: "{{.Missing"})
	require.NoError(t, err)

	_, _, err = newPromptBuilder(store).letter(samplePrompt())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidConfig))
}

func TestPromptTemplateCacheReplacesOnReload(t *testing.T) {
	dir := t.TempDir()
	userFile := filepath.Join(dir, "user.tmpl")
	require.NoError(t, os.WriteFile(userFile, []byte("Pour {{.CompanyName}}"), 0o600))

	store, err := config.NewPromptStore(config.PromptConfig{UserFile: userFile})
	require.NoError(t, err)
	b := newPromptBuilder(store)

	sources := []string{"Pour {{.CompanyName}}", "Poste {{.JobTitle}}", "Pour {{.CompanyName}}", "Chez {{.CompanyName}}"}
	want := []string{"Pour Acme", "Poste Développeur Go", "Pour Acme", "Chez Acme"}
	for i, src := range sources {
		require.NoError(t, os.WriteFile(userFile, []byte(src), 0o600))
		require.NoError(t, store.Reload())

		_, user, err := b.letter(samplePrompt())
		require.NoError(t, err)
		assert.Equal(t, want[i], user)
		assert.Len(t, b.templates, 1, "one cached template per prompt name")
	}

	tmpl, err := b.parse("user", sources[3])
	require.NoError(t, err)
	same, err := b.parse("user", sources[3])
	require.NoError(t, err)
	assert.Same(t, tmpl, same)
}
