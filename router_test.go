package steer

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/suite"
)

type testUser struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type RouterSuite struct {
	suite.Suite
	ctx    context.Context
	reader *MessageReader
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	s.ctx = context.Background()
	s.reader = NewMessageReader(DefaultConverters()...)
}

// record returns a handler that appends name to calls.
func record(calls *[]string, name string) func(context.Context, *Response) error {
	return func(context.Context, *Response) error {
		*calls = append(*calls, name)
		return nil
	}
}

func (s *RouterSuite) TestRunsMatchingBinding() {
	var calls []string
	tree := Route(Status(),
		On(http.StatusOK).Call(record(&calls, "ok")),
		On(http.StatusNotFound).Call(record(&calls, "not found")),
	)

	c, err := tree.Execute(s.ctx, newTestResponse(http.StatusNotFound, ""), s.reader)

	s.Require().NoError(err)
	s.Assert().Equal([]string{"not found"}, calls)
	s.Assert().True(c.Empty())
}

func (s *RouterSuite) TestFirstMatchWins() {
	for i := 0; i < 3; i++ {
		s.Run("position", func() {
			var calls []string
			bindings := []Binding[int]{
				On(http.StatusAccepted).Call(record(&calls, "other")),
				On(http.StatusAccepted).Call(record(&calls, "other")),
				On(http.StatusAccepted).Call(record(&calls, "other")),
			}
			bindings[i] = On(http.StatusOK).Call(record(&calls, "first"))
			bindings = append(bindings, On(http.StatusOK).Call(record(&calls, "second")))

			_, err := Route(Status(), bindings...).Execute(s.ctx, newTestResponse(http.StatusOK, ""), s.reader)

			s.Require().NoError(err)
			s.Assert().Equal([]string{"first"}, calls)
		})
	}
}

func (s *RouterSuite) TestWildcardRunsWhenNothingMatches() {
	var calls []string
	tree := Route(Status(),
		On(http.StatusOK).Call(record(&calls, "ok")),
		Any[int]().Call(record(&calls, "any")),
	)

	_, err := tree.Execute(s.ctx, newTestResponse(http.StatusTeapot, ""), s.reader)

	s.Require().NoError(err)
	s.Assert().Equal([]string{"any"}, calls)
}

func (s *RouterSuite) TestExactMatchBeatsEarlierWildcard() {
	var calls []string
	tree := Route(Status(),
		Any[int]().Call(record(&calls, "any")),
		On(http.StatusOK).Call(record(&calls, "ok")),
	)

	_, err := tree.Execute(s.ctx, newTestResponse(http.StatusOK, ""), s.reader)

	s.Require().NoError(err)
	s.Assert().Equal([]string{"ok"}, calls)
}

func (s *RouterSuite) TestOnlyFirstWildcardCounts() {
	var calls []string
	tree := Route(Status(),
		Any[int]().Call(record(&calls, "first")),
		Any[int]().Call(record(&calls, "second")),
	)

	_, err := tree.Execute(s.ctx, newTestResponse(http.StatusOK, ""), s.reader)

	s.Require().NoError(err)
	s.Assert().Equal([]string{"first"}, calls)
}

func (s *RouterSuite) TestZeroValueIsNotWildcard() {
	var calls []string
	tree := Route(ContentType(),
		On("").Call(record(&calls, "missing")),
		Any[string]().Call(record(&calls, "any")),
	)

	_, err := tree.Execute(s.ctx, newTestResponse(http.StatusOK, "", "Content-Type", "text/plain"), s.reader)

	s.Require().NoError(err)
	s.Assert().Equal([]string{"any"}, calls)
}

func (s *RouterSuite) TestNoMatchingBinding() {
	tree := Route(Status(),
		On(http.StatusOK).Pass(),
	)

	_, err := tree.Execute(s.ctx, newTestResponse(http.StatusBadGateway, ""), s.reader)

	var nerr *NoMatchingBindingError
	s.Require().ErrorAs(err, &nerr)
	s.Assert().Equal(http.StatusBadGateway, nerr.Key)
	s.Assert().Contains(err.Error(), "502")
}

func (s *RouterSuite) TestEmptyTreeFails() {
	_, err := Route(Status()).Execute(s.ctx, newTestResponse(http.StatusOK, ""), s.reader)

	var nerr *NoMatchingBindingError
	s.Assert().ErrorAs(err, &nerr)
}

func (s *RouterSuite) TestSelectorErrorFails() {
	wantErr := errors.New("boom")
	sel := SelectorFunc[int](func(*Response) (int, error) { return 0, wantErr })

	_, err := Route(sel, Any[int]().Pass()).Execute(s.ctx, newTestResponse(http.StatusOK, ""), s.reader)

	s.Assert().ErrorIs(err, wantErr)
}

func (s *RouterSuite) TestCallErrorFails() {
	wantErr := errors.New("handler failed")
	tree := Route(Status(),
		On(http.StatusOK).Call(func(context.Context, *Response) error { return wantErr }),
	)

	_, err := tree.Execute(s.ctx, newTestResponse(http.StatusOK, ""), s.reader)

	s.Assert().ErrorIs(err, wantErr)
}

func (s *RouterSuite) TestCaptureResponseLeavesBodyUnread() {
	body := &trackingBody{data: []byte{0x13, 0x37}}
	r := NewResponse(&http.Response{StatusCode: http.StatusUnauthorized, Header: http.Header{}, Body: body})

	c, err := Route(Status(), On(http.StatusUnauthorized).Capture()).Execute(s.ctx, r, s.reader)
	s.Require().NoError(err)

	got, err := To[*Response](c)
	s.Require().NoError(err)
	s.Assert().Same(r, got)
	s.Assert().Zero(body.reads)
	s.Assert().False(body.closed)

	b, err := io.ReadAll(got.Body)
	s.Require().NoError(err)
	s.Assert().Equal([]byte{0x13, 0x37}, b)
}

func (s *RouterSuite) TestCaptureAsDecodesBody() {
	r := newTestResponse(http.StatusOK, `{"id": "1", "name": "ada"}`, "Content-Type", "application/json")

	c, err := Route(Status(), CaptureAs[testUser](On(http.StatusOK))).Execute(s.ctx, r, s.reader)
	s.Require().NoError(err)

	u, err := To[testUser](c)
	s.Require().NoError(err)
	s.Assert().Equal(testUser{ID: "1", Name: "ada"}, u)
}

func (s *RouterSuite) TestCaptureAsWithoutConverterFails() {
	r := newTestResponse(http.StatusOK, `id: 1`, "Content-Type", "application/vnd.unknown")

	_, err := Route(Status(), CaptureAs[testUser](On(http.StatusOK))).Execute(s.ctx, r, s.reader)

	var rerr *NoSuitableReadConverterError
	s.Require().ErrorAs(err, &rerr)
	s.Assert().Equal("application/vnd.unknown", rerr.ContentType)
}

func (s *RouterSuite) TestCallWithDecodesBody() {
	var got testUser
	tree := Route(Status(),
		CallWith(On(http.StatusConflict), func(_ context.Context, u testUser) error {
			got = u
			return nil
		}),
	)
	r := newTestResponse(http.StatusConflict, `{"id": "7", "name": "grace"}`, "Content-Type", "application/json")

	c, err := tree.Execute(s.ctx, r, s.reader)

	s.Require().NoError(err)
	s.Assert().True(c.Empty())
	s.Assert().Equal(testUser{ID: "7", Name: "grace"}, got)
}

func (s *RouterSuite) TestNestedDispatchByFamilyThenStatus() {
	var calls []string
	tree := Route(StatusFamily(),
		On(ClientError).Dispatch(Route(Status(),
			On(http.StatusNotFound).Call(record(&calls, "h1")),
		)),
		On(ServerError).Call(record(&calls, "h2")),
	)

	_, err := tree.Execute(s.ctx, newTestResponse(http.StatusNotFound, ""), s.reader)

	s.Require().NoError(err)
	s.Assert().Equal([]string{"h1"}, calls)
}

func (s *RouterSuite) TestNestedCapturePropagates() {
	r := newTestResponse(http.StatusCreated, `{"id": "9", "name": "linus"}`, "Content-Type", "application/json")
	tree := Route(StatusFamily(),
		On(Successful).Dispatch(Route(Status(),
			CaptureAs[testUser](On(http.StatusCreated)),
		)),
	)

	c, err := tree.Execute(s.ctx, r, s.reader)
	s.Require().NoError(err)

	u, err := To[testUser](c)
	s.Require().NoError(err)
	s.Assert().Equal("9", u.ID)
}

func (s *RouterSuite) TestNestedNoMatchPropagates() {
	tree := Route(StatusFamily(),
		On(ClientError).Dispatch(Route(Status(),
			On(http.StatusNotFound).Pass(),
		)),
		Any[Family]().Pass(),
	)

	_, err := tree.Execute(s.ctx, newTestResponse(http.StatusForbidden, ""), s.reader)

	var nerr *NoMatchingBindingError
	s.Require().ErrorAs(err, &nerr)
	s.Assert().Equal(http.StatusForbidden, nerr.Key)
}

func (s *RouterSuite) TestNestedTreesOfDifferentKeyTypes() {
	var calls []string
	tree := Route(IsCurrentRepresentation(),
		On(true).Dispatch(Route(ContentType(),
			On("application/json").Call(record(&calls, "json")),
		)),
		On(false).Call(record(&calls, "stale")),
	)
	r := newTestResponse(http.StatusOK, "{}",
		"Location", "/a",
		"Content-Location", "/a",
		"Content-Type", "application/json",
	)

	_, err := tree.Execute(s.ctx, r, s.reader)

	s.Require().NoError(err)
	s.Assert().Equal([]string{"json"}, calls)
}

func (s *RouterSuite) TestBodySelectorAndTypedCaptureShareOneRead() {
	body := &trackingBody{data: []byte(`{"id": "3", "name": "barbara"}`)}
	r := NewResponse(&http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": {"application/json"}},
		Body:       body,
	})
	tree := Route(BodyField("name"),
		CaptureAs[testUser](On("barbara")),
	)

	c, err := tree.Execute(s.ctx, r, s.reader)
	s.Require().NoError(err)
	reads := body.reads

	u, err := To[testUser](c)
	s.Require().NoError(err)
	s.Assert().Equal("3", u.ID)
	s.Assert().Equal(reads, body.reads)
	s.Assert().True(body.closed)
}

func (s *RouterSuite) TestTreeIsReusable() {
	var calls []string
	tree := Route(Status(),
		On(http.StatusOK).Call(record(&calls, "ok")),
		Any[int]().Call(record(&calls, "any")),
	)

	for _, code := range []int{http.StatusOK, http.StatusTeapot, http.StatusOK} {
		_, err := tree.Execute(s.ctx, newTestResponse(code, ""), s.reader)
		s.Require().NoError(err)
	}

	s.Assert().Equal([]string{"ok", "any", "ok"}, calls)
}

func (s *RouterSuite) TestZeroBindingIsIgnored() {
	var calls []string
	tree := Route(Status(),
		Binding[int]{},
		Any[int]().Call(record(&calls, "any")),
	)

	_, err := tree.Execute(s.ctx, newTestResponse(0, ""), s.reader)

	s.Require().NoError(err)
	s.Assert().Equal([]string{"any"}, calls)

	_, err = Route(Status(), Binding[int]{}).Execute(s.ctx, newTestResponse(0, ""), s.reader)

	var nerr *NoMatchingBindingError
	s.Assert().ErrorAs(err, &nerr)
}

func TestBindingAccessors(t *testing.T) {
	b := On(http.StatusOK).Pass()
	if b.Wildcard() || b.Value() != http.StatusOK {
		t.Errorf("On(200) = {value: %d, wildcard: %v}", b.Value(), b.Wildcard())
	}

	w := Any[int]().Pass()
	if !w.Wildcard() {
		t.Error("Any() should be a wildcard")
	}
}
