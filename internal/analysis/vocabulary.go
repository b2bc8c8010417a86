package analysis

// vocabularyTerms lists the business, HR and technology terms that count as
// job keywords. Tokens of a job description outside this list are ignored.
var vocabularyTerms = []string{
	"javascript", "python", "react", "node", "java", "développement", "management", "marketing",
	"commercial", "finance", "projet", "équipe", "client", "innovation", "digital", "data",
	"analyse", "stratégie", "performance", "résultats", "objectifs", "croissance", "expérience",
	"compétence", "formation", "diplôme", "certification", "agile", "scrum", "startup",
	"entreprise", "international", "export", "vente", "négociation", "relation", "communication",
	"leadership", "autonomie", "rigueur", "créativité", "collaboration", "anglais", "français",
	"europe", "monde", "secteur", "industrie", "marché", "concurrence", "solution", "produit",
	"service", "qualité", "sécurité", "conformité", "réglementation", "budget", "rentabilité",
	"roi", "kpi", "dashboard", "reporting", "excel", "powerpoint", "word", "outlook", "crm",
	"erp", "sql", "html", "css", "php", "adobe", "photoshop", "illustrator", "indesign", "seo",
	"sem", "social", "média", "content", "rédaction", "édition", "publication", "événement",
	"salon", "conférence", "coaching", "mentorat", "recrutement", "ressources", "humaines",
	"paie", "juridique", "comptabilité", "fiscalité", "audit", "contrôle", "gestion",
	"administration", "secrétariat", "accueil", "téléphone", "mail", "courrier", "planning",
	"agenda", "organisation", "méthode", "processus", "procédure", "documentation", "manuel",
	"guide", "support", "maintenance", "dépannage", "installation", "configuration", "réseau",
	"système", "serveur", "base", "données", "sauvegarde", "antivirus", "firewall", "vpn",
	"cloud", "aws", "azure", "google", "microsoft", "office", "teams", "slack", "zoom", "skype",
	"linkedin", "facebook", "twitter", "instagram", "youtube", "analytics", "adwords", "ads",
	"emailing", "newsletter", "blog", "site", "web", "e-commerce", "boutique", "magasin", "point",
	"caisse", "stock", "inventaire", "logistique", "transport", "livraison", "expédition",
	"douane", "import", "espagnol", "allemand", "italien", "chinois", "arabe", "niveau",
	"bilingue", "courant", "notions", "débutant", "intermédiaire", "avancé", "expert", "maîtrise",
	"connaissance", "aptitude", "défaut", "force", "faiblesse", "objectif", "motivation",
	"ambition", "avenir", "carrière", "évolution", "promotion", "augmentation", "prime", "bonus",
	"salaire", "rémunération", "avantage", "bénéfice", "congé", "vacances", "rtt", "télétravail",
	"flexibilité", "horaire", "temps", "partiel", "plein", "cdd", "cdi", "stage", "alternance",
	"apprentissage", "école", "université", "bac", "bts", "dut", "licence", "master", "doctorat",
	"mba", "continue", "professionnelle", "reconversion", "mobilité", "mutation", "expatriation",
	"mission", "fournisseur", "partenaire", "concurrent", "activité", "domaine", "spécialité",
	"expertise", "année", "mois", "poste", "fonction", "responsabilité", "tâche", "réalisation",
	"résultat", "indicateur", "mesure", "évaluation", "entretien", "feedback", "retour",
	"amélioration", "progression", "expansion", "acquisition", "fusion", "restructuration",
	"transformation", "changement", "nouveauté", "tendance", "futur", "vision", "valeur",
	"culture", "esprit", "échange", "partage", "transmission", "personnel", "professionnel",
	"soft", "skills", "hard", "technique", "fonctionnelle", "transversale", "généraliste",
	"spécialisé", "polyvalent", "adaptable", "flexible", "mobile", "disponible", "réactif",
	"proactif", "autonome", "indépendant", "organisé", "rigoureux", "méthodique", "précis",
	"minutieux", "consciencieux", "fiable", "ponctuel", "assidu", "persévérant", "patient",
	"calme", "zen", "stress", "pression", "urgence", "délai", "échéance", "cible", "but",
	"finalité", "enjeu", "défi", "challenge", "opportunité", "chance", "possibilité",
	"perspective", "horizon", "commerce", "négoce", "achat", "approvisionnement", "sourcing",
	"supply", "chain", "distribution", "stockage", "entrepôt", "showroom", "corner", "stand",
	"foire", "exposition", "manifestation", "congrès", "colloque", "séminaire", "atelier",
	"workshop", "masterclass", "présentation", "pitch", "démonstration", "prototype", "maquette",
	"échantillon", "test", "essai", "validation", "homologation", "agrément", "autorisation",
	"brevet", "marque", "propriété", "intellectuelle", "droit", "auteur", "copyright",
	"trademark", "brand", "image", "réputation", "notoriété", "visibilité", "publicité",
	"sponsoring", "mécénat", "partenariat", "alliance", "joint", "venture", "rachat", "cession",
	"investissement", "financement", "capital", "fonds", "subvention", "aide", "soutien",
	"accompagnement", "conseil", "diagnostic", "étude", "recherche", "création", "conception",
	"design",
}

var vocabulary = func() map[string]struct{} {
	set := make(map[string]struct{}, len(vocabularyTerms))
	for _, term := range vocabularyTerms {
		set[term] = struct{}{}
	}
	return set
}()

// InVocabulary reports whether a lowercased token is a known job keyword.
func InVocabulary(token string) bool {
	_, ok := vocabulary[token]
	return ok
}
