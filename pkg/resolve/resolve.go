package resolve

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/polderlab/actornet/pkg/corpus"
	"github.com/polderlab/actornet/pkg/logger"
	"github.com/polderlab/actornet/pkg/registry"

	"golang.org/x/sync/errgroup"
)

// EntitySet is the deduplicated resolution result for one document.
// It is produced once per document and read-only afterwards; the
// paragraph tagger scans against it.
type EntitySet struct {
	Persons       []string `json:"persons"`
	Organizations []string `json:"organizations"`
}

// Resolver maps raw NER mentions to canonical identities: organization
// mentions against the registry, person mentions against the surname
// reference list. All matching state is precomputed at construction and
// shared read-only across workers.
type Resolver struct {
	registry *registry.Registry
	surnames *registry.Surnames

	blocklist map[string]struct{}

	namePattern   *regexp.Regexp
	abbrevPattern *regexp.Regexp
	nameSet       map[string]struct{}
	abbrevSet     map[string]struct{}

	handlers map[corpus.MentionKind]func(*docAccumulator, string)
}

// NewResolverParams configures a Resolver.
//
// OrganizationBlocklist lists mention texts that are skipped outright
// before any registry matching, for filtering known-bad spans per run.
type NewResolverParams struct {
	Registry              *registry.Registry
	Surnames              *registry.Surnames
	OrganizationBlocklist []string
}

// NewResolver builds a Resolver. The registry name and abbreviation
// lists are compiled into quoted-literal alternation patterns, longest
// entry first so a mention containing both a full name and a shorter
// one resolves to the full name.
func NewResolver(params NewResolverParams) *Resolver {
	r := &Resolver{
		registry:  params.Registry,
		surnames:  params.Surnames,
		blocklist: make(map[string]struct{}, len(params.OrganizationBlocklist)),
		nameSet:   make(map[string]struct{}, len(params.Registry.Names)),
		abbrevSet: make(map[string]struct{}, len(params.Registry.Abbreviations)),
	}

	for _, m := range params.OrganizationBlocklist {
		r.blocklist[m] = struct{}{}
	}
	for _, name := range params.Registry.Names {
		r.nameSet[name] = struct{}{}
	}
	for _, abbrev := range params.Registry.Abbreviations {
		r.abbrevSet[abbrev] = struct{}{}
	}

	r.namePattern = compileAlternation(params.Registry.Names)
	r.abbrevPattern = compileAlternation(params.Registry.Abbreviations)

	r.handlers = map[corpus.MentionKind]func(*docAccumulator, string){
		corpus.MentionPerson:       r.resolvePerson,
		corpus.MentionOrganization: r.resolveOrganization,
	}

	return r
}

// ResolveDocument scans every mention of every sentence in document
// order and returns the deduplicated entity set. Unresolvable mentions
// are dropped silently; a document with no sentences yields empty sets.
func (r *Resolver) ResolveDocument(doc corpus.Document) EntitySet {
	acc := newDocAccumulator()

	for _, sentence := range doc.Sentences {
		for _, mention := range sentence.Mentions {
			handler, ok := r.handlers[mention.Kind]
			if !ok {
				continue
			}
			handler(acc, mention.Text)
		}
	}

	return acc.entitySet()
}

// ResolveAll resolves every document concurrently and returns entity
// sets keyed by document title. The registry and surname list are shared
// without locking; only the result map is guarded.
func (r *Resolver) ResolveAll(ctx context.Context, docs []corpus.Document, parallel int) (map[string]EntitySet, error) {
	if parallel <= 0 {
		parallel = 1
	}

	sets := make(map[string]EntitySet, len(docs))
	mu := sync.Mutex{}

	eg, gCtx := errgroup.WithContext(ctx)
	eg.SetLimit(parallel)

	for _, doc := range docs {
		d := doc
		eg.Go(func() error {
			if gCtx.Err() != nil {
				return gCtx.Err()
			}
			set := r.ResolveDocument(d)

			mu.Lock()
			sets[d.Title] = set
			mu.Unlock()
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	logger.Debug("[Resolve] Documents resolved", "documents", len(sets))
	return sets, nil
}

// resolveOrganization implements the ORG precedence chain: blocklist
// skip, then name match, then abbreviation match, then silent drop.
func (r *Resolver) resolveOrganization(acc *docAccumulator, mention string) {
	if _, blocked := r.blocklist[mention]; blocked {
		return
	}

	if r.namePattern != nil {
		if match := r.namePattern.FindString(mention); match != "" {
			if _, ok := r.nameSet[match]; ok {
				acc.addOrganization(match)
				return
			}
		}
	}

	if r.abbrevPattern != nil {
		if match := r.abbrevPattern.FindString(mention); match != "" {
			if _, ok := r.abbrevSet[match]; ok {
				if name, found := r.registry.ResolveAbbreviation(match); found {
					acc.addOrganization(name)
				}
			}
		}
	}
}

func (r *Resolver) resolvePerson(acc *docAccumulator, mention string) {
	surname := ExtractSurname(mention)
	if r.surnames.Accepts(surname) {
		acc.addPerson(surname)
	}
}

// ExtractSurname returns everything after the first whitespace-separated
// token, or the mention itself when it is a single token. Dutch surname
// particles stay attached: "Jan de Vries" yields "de Vries".
func ExtractSurname(mention string) string {
	fields := strings.Fields(mention)
	if len(fields) > 1 {
		return strings.Join(fields[1:], " ")
	}
	return mention
}

// compileAlternation builds a single pattern of quote-escaped literal
// alternatives, longest first. Returns nil for an empty entry list: an
// empty alternation matches everywhere and has to short-circuit to
// "no match" instead.
func compileAlternation(entries []string) *regexp.Regexp {
	literals := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry != "" {
			literals = append(literals, entry)
		}
	}
	if len(literals) == 0 {
		return nil
	}

	sort.SliceStable(literals, func(i, j int) bool {
		return len(literals[i]) > len(literals[j])
	})

	quoted := make([]string, len(literals))
	for i, literal := range literals {
		quoted[i] = regexp.QuoteMeta(literal)
	}

	return regexp.MustCompile(strings.Join(quoted, "|"))
}

// docAccumulator collects resolved identities for one document,
// deduplicating while preserving first-seen order.
type docAccumulator struct {
	persons    []string
	orgs       []string
	personSeen map[string]struct{}
	orgSeen    map[string]struct{}
}

func newDocAccumulator() *docAccumulator {
	return &docAccumulator{
		personSeen: make(map[string]struct{}),
		orgSeen:    make(map[string]struct{}),
	}
}

func (a *docAccumulator) addPerson(surname string) {
	if _, seen := a.personSeen[surname]; seen {
		return
	}
	a.personSeen[surname] = struct{}{}
	a.persons = append(a.persons, surname)
}

func (a *docAccumulator) addOrganization(name string) {
	if _, seen := a.orgSeen[name]; seen {
		return
	}
	a.orgSeen[name] = struct{}{}
	a.orgs = append(a.orgs, name)
}

func (a *docAccumulator) entitySet() EntitySet {
	return EntitySet{
		Persons:       a.persons,
		Organizations: a.orgs,
	}
}
