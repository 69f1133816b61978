package status

import (
	"bytes"
	"errors"
	"testing"

	"code.sztanpet.net/zvpsz/rpi-tools/internal/failure"
	"gopkg.in/check.v1"
	"periph.io/x/periph"
)

func Test(t *testing.T) { check.TestingT(t) }

type StatusSuite struct{}

var _ = check.Suite(&StatusSuite{})

func (s *StatusSuite) TestWrite(c *check.C) {
	st := &Status{
		RaspberryPi: true,
		Loaded:      []Driver{{Name: "bcm283x-gpio"}, {Name: "sysfs-i2c"}},
		Skipped:     []Driver{{Name: "allwinner-gpio", Err: "A64 CPU not detected"}},
	}

	buf := &bytes.Buffer{}
	c.Assert(st.Write(buf, "hostinfo"), check.IsNil)
	c.Assert(buf.String(), check.Equals, ""+
		"hostinfo    :: Raspberry Pi :: yes\n"+
		"hostinfo    :: Loaded drivers :: 2\n"+
		"    bcm283x-gpio\n"+
		"    sysfs-i2c\n"+
		"hostinfo    :: Skipped drivers :: 1\n"+
		"    allwinner-gpio: A64 CPU not detected\n"+
		"hostinfo    :: Failed drivers :: 0\n")
}

func (s *StatusSuite) TestFromNilState(c *check.C) {
	st := fromState(nil)
	c.Assert(st.Loaded, check.HasLen, 0)
	c.Assert(st.Failed, check.HasLen, 0)
}

func (s *StatusSuite) TestInitFailure(c *check.C) {
	orig := hostInit
	defer func() { hostInit = orig }()
	hostInit = func() (*periph.State, error) { return nil, errors.New("drivers exploded") }

	_, err := Check()
	c.Assert(failure.KindOf(err), check.Equals, failure.LibraryInitFailure)
}
