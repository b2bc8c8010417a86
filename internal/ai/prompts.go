package ai

import (
	"fmt"
	"strings"
	"sync"
	"text/template"

	"lettercraft/internal/config"
	"lettercraft/internal/errors"
	"lettercraft/internal/types"
)

// Prompts holds the four prompt texts used by the orchestrator. User and
// Improve are text/template sources.
type Prompts struct {
	System        string
	User          string
	ImproveSystem string
	Improve       string
}

// notSpecified fills profile fields the candidate left empty
const notSpecified = "Non spécifié"

// DefaultPrompts provides the built-in French prompts
var DefaultPrompts = Prompts{
	System: `Tu es un expert en rédaction de lettres de motivation et en recrutement avec plus de 15 ans d'expérience.

MISSION: Générer des lettres de motivation personnalisées, percutantes et authentiques qui maximisent les chances d'obtenir un entretien.

PRINCIPES FONDAMENTAUX:
1. PERSONNALISATION: Chaque lettre doit être unique et adaptée au poste/entreprise
2. AUTHENTICITÉ: Le ton doit rester humain et sincère, jamais robotique
3. IMPACT: Chaque phrase doit apporter de la valeur et capter l'attention
4. STRUCTURE: Respecter les codes professionnels français
5. OPTIMISATION: Intégrer les mots-clés du poste naturellement

STRUCTURE OBLIGATOIRE:
1. ACCROCHE (1 phrase): Captiver immédiatement l'attention
2. MOTIVATION (1-2 paragraphes): Pourquoi cette entreprise/ce poste
3. VALEUR AJOUTÉE (1-2 paragraphes): Expériences et compétences pertinentes
4. PROJETS/RÉALISATIONS (1 paragraphe): Résultats concrets et chiffrés
5. VISION (1 paragraphe): Comment contribuer aux objectifs de l'entreprise
6. CLÔTURE (1-2 phrases): Appel à l'action confiant

RÈGLES DE STYLE:
- Longueur: 250-400 mots maximum
- Phrases: Variées (courtes et moyennes), maximum 25 mots
- Vocabulaire: Professionnel mais accessible
- Ton: Adapté à la demande (professionnel, enthousiaste, etc.)
- Éviter: Clichés, formulations banales, surutilisation d'adjectifs

INTERDICTIONS ABSOLUES:
- Phrases génériques ("Je suis motivé", "Votre entreprise m'intéresse")
- Répétition des informations du CV
- Formules trop obséquieuses ou prétentieuses
- Fautes d'orthographe ou de grammaire
- Longueurs inutiles ou blabla

ADAPTATION SECTORIELLE:
- Tech: Mentionner veille technologique, projets open source, agilité
- Marketing: Parler ROI, analytics, créativité, data-driven
- Finance: Évoquer rigueur, analyse, conformité, optimisation
- Santé: Insister sur l'humain, la précision, l'éthique
- Startup: Mettre en avant adaptabilité, polyvalence, croissance

La lettre doit donner envie au recruteur de rencontrer le candidat. Chaque mot compte.`,

	User: `GÉNÈRE UNE LETTRE DE MOTIVATION POUR:

POSTE: {{.JobTitle}}
ENTREPRISE: {{.CompanyName}}
SECTEUR: {{.Industry}}

DESCRIPTION DU POSTE:
{{.JobDescription}}

PROFIL DU CANDIDAT:
- Nom: {{.Name}}
- Titre: {{.Title}}
- Niveau d'expérience: {{.ExperienceLevel}}
- Compétences clés: {{.Skills}}
- Objectifs de carrière: {{.CareerObjectives}}
- Bio: {{.Bio}}

{{if .PersonalNotes}}NOTES PERSONNELLES DU CANDIDAT:
{{.PersonalNotes}}{{end}}

INSTRUCTIONS SPÉCIFIQUES:
- {{.ToneInstruction}}
- Intégrer naturellement les mots-clés de l'offre
- Mettre en avant l'adéquation profil/poste
- Montrer une connaissance de l'entreprise
- Éviter les généralités, être spécifique et concret

GÉNÈRE UNIQUEMENT LE CONTENU DE LA LETTRE, sans formule de politesse d'ouverture ni signature.`,

	ImproveSystem: `Tu es un expert en révision de lettres de motivation. Ton rôle est d'améliorer les lettres en conservant leur authenticité.`,

	Improve: `AMÉLIORE cette lettre de motivation en tenant compte des suggestions suivantes:

LETTRE ACTUELLE:
{{.Content}}

SUGGESTIONS D'AMÉLIORATION:
{{range .Suggestions}}- {{.}}
{{end}}
INSTRUCTIONS:
- Conserve la structure générale et le ton
- Applique les améliorations suggérées de manière naturelle
- Améliore la fluidité et l'impact
- Garde la même longueur approximative
- Assure-toi que le résultat reste authentique

GÉNÈRE LA VERSION AMÉLIORÉE:`,
}

// ToneInstructions maps each tone to the instruction given to the model
var ToneInstructions = map[types.Tone]string{
	types.ToneProfessional: "Ton professionnel et confiant, mais chaleureux",
	types.ToneEnthusiastic: "Ton enthousiaste et énergique, montrant une vraie passion",
	types.ToneFormal:       "Ton formel et respectueux, très codifié",
	types.ToneCreative:     "Ton créatif et original, sortant des sentiers battus",
	types.ToneCasual:       "Ton décontracté mais professionnel, moderne",
}

const salesAddendum = `SPÉCIALISATION VENTE:
- Mettre en avant les résultats commerciaux chiffrés (CA, quotas)
- Parler de prospection, négociation, closing
- Évoquer la relation client et la fidélisation
- Montrer la connaissance du cycle de vente B2B/B2C
- Utiliser le vocabulaire CRM et pipeline commercial
- Démontrer l'esprit de compétition et l'orientation résultats`

var sectorAddenda = map[string]string{
	"tech": `SPÉCIALISATION TECH:
- Mentionner la veille technologique et l'apprentissage continu
- Parler de projets open source ou contributions GitHub si pertinent
- Utiliser le vocabulaire technique approprié sans être trop technique
- Montrer la capacité d'adaptation aux nouvelles technologies
- Mettre en avant les méthodologies agiles si approprié
- Évoquer l'esprit d'équipe et la collaboration en mode startup/scale-up`,
	"marketing": `SPÉCIALISATION MARKETING:
- Parler en termes de ROI, conversion, acquisition, rétention
- Mentionner une approche data-driven avec des KPIs concrets
- Évoquer la créativité et l'innovation dans les campagnes
- Montrer la compréhension des enjeux digitaux (SEO, SEM, social media)
- Utiliser le vocabulaire du growth hacking si startup
- Démontrer la capacité à analyser et optimiser les performances`,
	"sales": salesAddendum,
	"vente": salesAddendum,
	"finance": `SPÉCIALISATION FINANCE:
- Insister sur la rigueur, la précision, l'analyse
- Parler de conformité, réglementation, audit
- Évoquer l'optimisation des coûts et la rentabilité
- Mentionner les outils Excel avancés, ERP, BI
- Utiliser le vocabulaire comptable et financier approprié
- Montrer la capacité à conseiller et éclairer les décisions`,
}

// SectorAddendum returns the sector specific instructions for industry, or ""
func SectorAddendum(industry string) string {
	return sectorAddenda[strings.ToLower(strings.TrimSpace(industry))]
}

// ToneInstruction returns the instruction for tone, defaulting to professional
func ToneInstruction(tone types.Tone) string {
	if s, ok := ToneInstructions[tone]; ok {
		return s
	}
	return ToneInstructions[types.ToneProfessional]
}

type letterData struct {
	JobTitle         string
	CompanyName      string
	Industry         string
	JobDescription   string
	Name             string
	Title            string
	ExperienceLevel  string
	Skills           string
	CareerObjectives string
	Bio              string
	PersonalNotes    string
	ToneInstruction  string
}

type improveData struct {
	Content     string
	Suggestions []string
}

func orNotSpecified(s string) string {
	if strings.TrimSpace(s) == "" {
		return notSpecified
	}
	return s
}

// promptBuilder renders prompts, preferring overrides from the store
type promptBuilder struct {
	store *config.PromptStore

	mu        sync.Mutex
	templates map[string]cachedTemplate
}

type cachedTemplate struct {
	src  string
	tmpl *template.Template
}

func newPromptBuilder(store *config.PromptStore) *promptBuilder {
	return &promptBuilder{store: store, templates: make(map[string]cachedTemplate)}
}

// current resolves each prompt: loaded override (file, then config) over default
func (b *promptBuilder) current() Prompts {
	loaded := b.store.Prompts()
	return Prompts{
		System:        resolvePrompt(loaded.System, DefaultPrompts.System),
		User:          resolvePrompt(loaded.User, DefaultPrompts.User),
		ImproveSystem: resolvePrompt(loaded.ImproveSystem, DefaultPrompts.ImproveSystem),
		Improve:       resolvePrompt(loaded.Improve, DefaultPrompts.Improve),
	}
}

func resolvePrompt(override, fromDefault string) string {
	if strings.TrimSpace(override) != "" {
		return override
	}
	return fromDefault
}

// parse caches one template per prompt name, replaced when its source changes
func (b *promptBuilder) parse(name, src string) (*template.Template, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if cached, ok := b.templates[name]; ok && cached.src == src {
		return cached.tmpl, nil
	}
	tmpl, err := template.New(name).Option("missingkey=error").Parse(src)
	if err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("invalid %s prompt template", name), err)
	}
	b.templates[name] = cachedTemplate{src: src, tmpl: tmpl}
	return tmpl, nil
}

func (b *promptBuilder) render(name, src string, data any) (string, error) {
	tmpl, err := b.parse(name, src)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("failed to render %s prompt", name), err)
	}
	return sb.String(), nil
}

// letter builds the system and user prompts for a generation request
func (b *promptBuilder) letter(p types.LetterPrompt) (system, user string, err error) {
	prompts := b.current()

	system = prompts.System
	if addendum := SectorAddendum(p.Industry); addendum != "" {
		system += "\n\n" + addendum
	}

	data := letterData{
		JobTitle:         p.JobTitle,
		CompanyName:      p.CompanyName,
		Industry:         orNotSpecified(p.Industry),
		JobDescription:   p.JobDescription,
		Name:             p.Profile.Name(),
		Title:            orNotSpecified(p.Profile.Title),
		ExperienceLevel:  orNotSpecified(p.Profile.ExperienceLevel),
		Skills:           orNotSpecified(strings.Join(p.Profile.Skills, ", ")),
		CareerObjectives: orNotSpecified(p.Profile.CareerObjectives),
		Bio:              orNotSpecified(p.Profile.Bio),
		PersonalNotes:    strings.TrimSpace(p.PersonalNotes),
		ToneInstruction:  ToneInstruction(p.Tone),
	}

	user, err = b.render("user", prompts.User, data)
	if err != nil {
		return "", "", err
	}
	return system, user, nil
}

// improve builds the revision prompts
func (b *promptBuilder) improve(content string, suggestions []string) (system, user string, err error) {
	prompts := b.current()

	user, err = b.render("improve", prompts.Improve, improveData{Content: content, Suggestions: suggestions})
	if err != nil {
		return "", "", err
	}
	return prompts.ImproveSystem, user, nil
}
