package speech

import (
	"math/rand"
	"strings"
	"time"

	"github.com/go-go-golems/spelunker/pkg/world"
	"github.com/pkg/errors"
)

var ErrUnrecognizedAction = errors.New("utterance names no known action")

// DefaultSeparator joins the clauses of a percept utterance.
const DefaultSeparator = ". "

// Codec turns percepts and actions into English and back.
//
// A Codec is not safe for concurrent use: each role owns its own.
type Codec struct {
	dict      *Dictionary
	rnd       *rand.Rand
	separator string

	// firstKeywordOnly checks only the canonical keyword of each flag when
	// recognizing a percept, the way the first version of the navigator did.
	firstKeywordOnly bool
}

type Option func(*Codec)

// WithSeed makes phrase choice deterministic.
func WithSeed(seed int64) Option {
	return func(c *Codec) {
		c.rnd = rand.New(rand.NewSource(seed))
	}
}

func WithRand(r *rand.Rand) Option {
	return func(c *Codec) {
		c.rnd = r
	}
}

func WithDictionary(d *Dictionary) Option {
	return func(c *Codec) {
		c.dict = d
	}
}

func WithSeparator(separator string) Option {
	return func(c *Codec) {
		c.separator = separator
	}
}

func WithFirstKeywordOnly(enabled bool) Option {
	return func(c *Codec) {
		c.firstKeywordOnly = enabled
	}
}

func NewCodec(options ...Option) *Codec {
	c := &Codec{
		dict:      DefaultDictionary(),
		separator: DefaultSeparator,
	}
	for _, o := range options {
		o(c)
	}
	if c.rnd == nil {
		c.rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return c
}

func (c *Codec) Dictionary() *Dictionary {
	return c.dict
}

func (c *Codec) pick(phrases []string) string {
	return phrases[c.rnd.Intn(len(phrases))]
}

// EncodePercept says one random phrase per raised flag, or one "nothing"
// phrase when no flag is raised.
func (c *Codec) EncodePercept(p world.Percept) string {
	var clauses []string
	for _, f := range Flags {
		if f.IsSet(p) {
			clauses = append(clauses, c.pick(c.dict.PerceptPhrases[f]))
		}
	}
	if len(clauses) == 0 {
		clauses = append(clauses, c.pick(c.dict.NothingPhrases))
	}
	return strings.Join(clauses, c.separator)
}

// DecodePercept raises every flag whose keywords occur in a clause of the
// utterance. Anything unrecognized is ignored.
func (c *Codec) DecodePercept(utterance string) world.Percept {
	var p world.Percept
	for _, clause := range strings.Split(utterance, c.separator) {
		clause = strings.ToLower(clause)
		for _, f := range Flags {
			keywords := c.dict.PerceptKeywords[f]
			if c.firstKeywordOnly && len(keywords) > 1 {
				keywords = keywords[:1]
			}
			if containsAny(clause, keywords) {
				f.Set(&p)
			}
		}
	}
	return p
}

// EncodeAction says one random phrase for the action.
func (c *Codec) EncodeAction(a world.Action) (string, error) {
	phrases := c.dict.ActionPhrases[a]
	if len(phrases) == 0 {
		return "", errors.Wrapf(world.ErrUnknownAction, "no phrase for %s", a)
	}
	return c.pick(phrases), nil
}

// DecodeAction returns the first action, in world.Actions order, with a
// keyword occurring in the utterance. There is no default action.
func (c *Codec) DecodeAction(utterance string) (world.Action, error) {
	lower := strings.ToLower(utterance)
	for _, a := range world.Actions {
		if containsAny(lower, c.dict.ActionKeywords[a]) {
			return a, nil
		}
	}
	return 0, errors.Wrapf(ErrUnrecognizedAction, "%q", utterance)
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, strings.ToLower(k)) {
			return true
		}
	}
	return false
}
