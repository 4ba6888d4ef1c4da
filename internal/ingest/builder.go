// Package ingest constructs typed entities from the two raw sources: the
// property-tax roll (CSV) and the donor/contact roster (XLSX). It is the
// only layer that touches raw record text; everything downstream works on
// validated model.Entity values.
package ingest

import (
	"fmt"

	"github.com/rotisserie/eris"

	"github.com/shoreham-data/reconcile-cli/internal/address"
	"github.com/shoreham-data/reconcile-cli/internal/model"
	"github.com/shoreham-data/reconcile-cli/internal/nameparse"
)

// Builder turns raw record fields into validated entities using the name
// classifier and address normalizer.
type Builder struct {
	classifier *nameparse.Classifier
	normalizer *address.Normalizer
}

// NewBuilder wires a Builder from its two collaborators.
func NewBuilder(classifier *nameparse.Classifier, normalizer *address.Normalizer) *Builder {
	return &Builder{classifier: classifier, normalizer: normalizer}
}

// Build constructs one entity. primaryAddr is the property location (may
// be empty for donor records); secondaryAddrs are owner/mailing
// addresses. Household names expand into member individuals.
func (b *Builder) Build(loc model.LocationIdentifier, rawName, primaryAddr string, secondaryAddrs []string) (*model.Entity, error) {
	res := b.classifier.Classify(rawName)

	contact := &model.ContactInfo{}
	if primaryAddr != "" {
		primary := b.normalizer.Normalize(primaryAddr)
		contact.Primary = &primary
	}
	for _, raw := range secondaryAddrs {
		if raw == "" {
			continue
		}
		contact.Secondary = append(contact.Secondary, b.normalizer.Normalize(raw))
	}
	if contact.Primary == nil && len(contact.Secondary) == 0 {
		contact = nil
	}

	e := &model.Entity{
		Kind:     res.Kind,
		Location: loc,
		Name:     res.Name,
		Contact:  contact,
	}

	for i, member := range res.Members {
		e.Members = append(e.Members, model.Entity{
			Kind: model.KindIndividual,
			Location: model.LocationIdentifier{
				Source: loc.Source,
				IDType: loc.IDType,
				ID:     fmt.Sprintf("%s#m%d", loc.ID, i),
			},
			Name: member,
		})
	}

	if err := e.Validate(); err != nil {
		return nil, eris.Wrapf(err, "ingest: build %s", loc.Key())
	}
	return e, nil
}
