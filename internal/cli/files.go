package cli

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/tcfw/mastersched/pkg/cryptography"
	"github.com/tcfw/mastersched/pkg/name"
	"github.com/tcfw/mastersched/pkg/schedule"
)

// ScheduleFile is the YAML form of a producer schedule.
type ScheduleFile struct {
	Version   uint32         `yaml:"version"`
	Producers []ProducerFile `yaml:"producers"`
}

type ProducerFile struct {
	Name      string         `yaml:"name"`
	Key       string         `yaml:"key,omitempty"`
	Authority *AuthorityFile `yaml:"authority,omitempty"`
}

type AuthorityFile struct {
	Threshold uint32      `yaml:"threshold"`
	Keys      []KeyWeight `yaml:"keys"`
}

type KeyWeight struct {
	Key    string `yaml:"key"`
	Weight uint16 `yaml:"weight"`
}

func readFile(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}

	return os.ReadFile(path)
}

func readScheduleFile(path string) (*ScheduleFile, error) {
	d, err := readFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading schedule file")
	}

	f := &ScheduleFile{}
	if err := yaml.Unmarshal(d, f); err != nil {
		return nil, errors.Wrap(err, "parsing schedule file")
	}

	return f, nil
}

func readProducerFile(path string) (*ProducerFile, error) {
	d, err := readFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading authority file")
	}

	f := &ProducerFile{}
	if err := yaml.Unmarshal(d, f); err != nil {
		return nil, errors.Wrap(err, "parsing authority file")
	}

	return f, nil
}

// Schedule converts the file into a producer schedule keeping the file
// order.
func (f *ScheduleFile) Schedule() (*schedule.ProducerSchedule, error) {
	s := &schedule.ProducerSchedule{
		Version:   f.Version,
		Producers: make([]schedule.ProducerKey, 0, len(f.Producers)),
	}

	for i, p := range f.Producers {
		n, err := name.Parse(p.Name)
		if err != nil {
			return nil, errors.Wrapf(err, "producer %d", i)
		}

		k, err := cryptography.ParsePublicKey(p.Key)
		if err != nil {
			return nil, errors.Wrapf(err, "producer %s key", p.Name)
		}

		s.Producers = append(s.Producers, schedule.NewProducerKey(n, k))
	}

	return s, nil
}

// Authorities returns the producers with an explicit authority section.
func (f *ScheduleFile) Authorities() ([]schedule.ProducerAuthority, error) {
	out := []schedule.ProducerAuthority{}

	for _, p := range f.Producers {
		if p.Authority == nil {
			continue
		}

		a, err := p.ProducerAuthority()
		if err != nil {
			return nil, err
		}

		out = append(out, a)
	}

	return out, nil
}

// ProducerAuthority converts the producer entry. Authority keys are put in
// canonical order. Without an authority section the producer key becomes a
// single key authority.
func (p *ProducerFile) ProducerAuthority() (schedule.ProducerAuthority, error) {
	n, err := name.Parse(p.Name)
	if err != nil {
		return schedule.ProducerAuthority{}, err
	}

	if p.Authority == nil {
		k, err := cryptography.ParsePublicKey(p.Key)
		if err != nil {
			return schedule.ProducerAuthority{}, errors.Wrapf(err, "producer %s key", p.Name)
		}

		return schedule.NewProducerKey(n, k).ToAuthority(), nil
	}

	auth := schedule.BlockSigningAuthorityV0{
		Threshold: p.Authority.Threshold,
		Keys:      make([]schedule.KeyWeight, 0, len(p.Authority.Keys)),
	}

	for _, kw := range p.Authority.Keys {
		k, err := cryptography.ParsePublicKey(kw.Key)
		if err != nil {
			return schedule.ProducerAuthority{}, errors.Wrapf(err, "producer %s authority key", p.Name)
		}

		auth.Keys = append(auth.Keys, schedule.KeyWeight{Key: k, Weight: kw.Weight})
	}

	auth.SortKeys()

	return schedule.NewProducerAuthority(n, auth), nil
}

func scheduleToFile(s *schedule.ProducerSchedule) *ScheduleFile {
	f := &ScheduleFile{
		Version:   s.Version,
		Producers: make([]ProducerFile, 0, len(s.Producers)),
	}

	for _, p := range s.Producers {
		f.Producers = append(f.Producers, ProducerFile{
			Name: p.ProducerName.String(),
			Key:  p.BlockSigningKey.String(),
		})
	}

	return f
}

func authorityToFile(a schedule.ProducerAuthority) ProducerFile {
	f := ProducerFile{Name: a.ProducerName.String()}

	if v0, ok := a.Authority.(schedule.BlockSigningAuthorityV0); ok {
		af := &AuthorityFile{Threshold: v0.Threshold}
		for _, kw := range v0.Keys {
			af.Keys = append(af.Keys, KeyWeight{Key: kw.Key.String(), Weight: kw.Weight})
		}
		f.Authority = af
	}

	return f
}

func writeYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return errors.Wrap(err, "encoding yaml")
	}

	return enc.Close()
}
