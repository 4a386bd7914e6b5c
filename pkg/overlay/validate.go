package overlay

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ErrInvalid wraps every constraint failure reported by Validate.
var ErrInvalid = errors.New("invalid overlay")

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

// Validate checks an overlay against the constraints the UI layer is expected
// to uphold: an ID, a target node for focus and impact, a non-negative depth,
// node IDs on every heatmap value and well-formed colours.
//
// The store and the composition pipeline never call Validate; they accept
// whatever they are given. Hosts use it to surface warnings before applying.
func Validate(o Overlay) error {
	if o == nil {
		return fmt.Errorf("%w: nil", ErrInvalid)
	}
	err := validatorInstance().Struct(o)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validating %s overlay %q: %w", o.Kind(), o.Meta().ID, err)
	}
	problems := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		problems = append(problems, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s %q: %s", ErrInvalid, o.Kind(), o.Meta().ID, strings.Join(problems, "; "))
}
