// Package catalog holds the built-in funnels of the landing site.
// They are served when no definition directory is configured.
package catalog

import (
	"github.com/reachflow/funnel/pkg/adapters/memory"
	"github.com/reachflow/funnel/pkg/domain"
	"github.com/reachflow/funnel/pkg/dsl"
)

// Funnel IDs.
const (
	Qualifier  = "qualifier"
	Diagnostic = "diagnostic"
)

// BookingPath is where accepted leads are sent to pick a meeting slot.
const BookingPath = "/ar/booking"

// Destinations offered by the diagnostic form.
var Destinations = []string{
	"France",
	"Canada",
	"Espagne",
	"Allemagne",
	"Turquie",
	"Royaume-Uni",
	"États-Unis",
	"Autre",
}

// QualifierFunnel asks two qualifying questions, then collects contact details.
func QualifierFunnel() *dsl.Builder {
	b := dsl.New(Qualifier).
		Title("Candidature").
		Destination(BookingPath).
		Static("source", Qualifier)

	b.Choice("students", "Combien d'étudiants accompagnez-vous par an ?",
		"Moins de 50 étudiants",
		"Entre 50 et 150 étudiants",
		"Plus de 150 étudiants",
	)
	b.Choice("obstacle", "Quel est votre plus gros obstacle actuel ?",
		"Le volume (Pas assez de leads)",
		"La qualité (Étudiants sans budget)",
		"Le closing (Difficulté à convertir)",
	)
	b.Input("name", "Nom Complet").Hint(domain.HintName).Placeholder("Votre nom complet")
	b.Input("phone", "Numéro WhatsApp").Hint(domain.HintTel).Placeholder("+212 6XX XXX XXX")
	b.Input("email", "Email").Hint(domain.HintEmail).Placeholder("votre@email.com")
	return b
}

// DiagnosticFunnel is the free agency diagnostic.
func DiagnosticFunnel() *dsl.Builder {
	b := dsl.New(Diagnostic).
		Title("Diagnostic gratuit").
		Destination(BookingPath).
		Static("source", Diagnostic)

	b.Input("name", "Nom Complet").Hint(domain.HintName).Placeholder("Votre nom complet")
	b.Input("agency", "Nom du Bureau").Placeholder("Nom de votre bureau")
	b.Input("city", "Ville").Placeholder("Ex: Casablanca")
	b.Choice("destination", "Destination Principale", Destinations...)
	b.Choice("situation", "Situation Actuelle",
		"J'ai besoin de Volume (plus de leads)",
		"J'ai besoin de Qualité (leads sérieux)",
		"Je démarre mon bureau",
	)
	b.Input("whatsapp", "Numéro WhatsApp").Hint(domain.HintTel).Placeholder("+212 6XX XXX XXX")
	return b
}

// Loader serves every built-in funnel.
func Loader() (*memory.Loader, error) {
	return dsl.Loader(QualifierFunnel(), DiagnosticFunnel())
}
