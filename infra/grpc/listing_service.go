package grpc

import (
	"context"
	"encoding/json"
	"errors"

	"schwarzesbrett/domain"
	"schwarzesbrett/pkg/listing"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	listingServiceName = "schwarzesbrett.v1.ListingService"
	maxPageSize        = 100
)

// ListingServer serves read-only board listings to other services. Messages are
// google.protobuf.Struct so clients need no generated stubs.
type ListingServer interface {
	ListAds(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Breadcrumb(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// CategoryPaths resolves the root-first path to a category.
type CategoryPaths interface {
	CategoryPath(ctx context.Context, id int64) ([]domain.Category, error)
}

type ListingService struct {
	ads        listing.Source[domain.Ad, domain.AdScope]
	columns    listing.SortColumns
	categories CategoryPaths
	pageSize   int
}

func NewListingService(ads listing.Source[domain.Ad, domain.AdScope], columns listing.SortColumns, categories CategoryPaths, pageSize int) *ListingService {
	if pageSize < 1 {
		pageSize = listing.DefaultItemsPerPage
	}
	return &ListingService{
		ads:        ads,
		columns:    columns,
		categories: categories,
		pageSize:   pageSize,
	}
}

// ListAds returns one page of public ads. Recognized fields: q, location,
// category, sort, ascending, page, pageSize, includeExpired.
func (s *ListingService) ListAds(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	pageSize := intField(req, "pageSize")
	if pageSize < 1 {
		pageSize = s.pageSize
	}
	pageSize = min(pageSize, maxPageSize)

	sortBy := stringField(req, "sort")
	if sortBy == "" {
		sortBy = "released"
	}

	criteria := listing.Criteria{
		SearchTerm:     stringField(req, "q"),
		LocationSearch: stringField(req, "location"),
		CategoryID:     int64(intField(req, "category")),
		SortBy:         sortBy,
		SortAscending:  boolField(req, "ascending"),
		PageNumber:     1,
		ItemsPerPage:   pageSize,
		IncludeExpired: boolField(req, "includeExpired"),
	}

	ctrl := listing.NewController(s.ads, domain.AdScope{Kind: domain.AdScopeAll}, s.columns, pageSize, zap.L().Named("grpc.ads"))
	if err := ctrl.Restore(criteria, 1); err != nil {
		return nil, toStatus(err)
	}

	page := max(intField(req, "page"), 1)
	if err := ctrl.GoToPage(ctx, page); err != nil {
		return nil, toStatus(err)
	}

	return toStruct(ctrl.Page())
}

// Breadcrumb returns the root-first path to the category in field id.
func (s *ListingService) Breadcrumb(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id := int64(intField(req, "id"))
	if id < 1 {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}

	path, err := s.categories.CategoryPath(ctx, id)
	if err != nil {
		return nil, toStatus(err)
	}

	return toStruct(map[string]any{"path": path})
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, listing.ErrInvalidSortColumn):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, listing.ErrDataSourceUnavailable):
		return status.Error(codes.Unavailable, "listing unavailable")
	default:
		zap.L().Error("listing service error", zap.Error(err))
		return status.Error(codes.Internal, "internal error")
	}
}

// toStruct converts v through its JSON form, so field names match the HTTP API.
func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, "encode response")
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, status.Error(codes.Internal, "encode response")
	}
	out, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Error(codes.Internal, "encode response")
	}
	return out, nil
}

func stringField(s *structpb.Struct, name string) string {
	return s.GetFields()[name].GetStringValue()
}

func intField(s *structpb.Struct, name string) int {
	return int(s.GetFields()[name].GetNumberValue())
}

func boolField(s *structpb.Struct, name string) bool {
	return s.GetFields()[name].GetBoolValue()
}

// RegisterListingServer registers srv under ListingServiceDesc.
func RegisterListingServer(registrar grpc.ServiceRegistrar, srv ListingServer) {
	registrar.RegisterService(&ListingServiceDesc, srv)
}

var ListingServiceDesc = grpc.ServiceDesc{
	ServiceName: listingServiceName,
	HandlerType: (*ListingServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListAds", Handler: unary(ListingServer.ListAds, "ListAds")},
		{MethodName: "Breadcrumb", Handler: unary(ListingServer.Breadcrumb, "Breadcrumb")},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "schwarzesbrett/v1/listing.proto",
}

func unary(
	method func(ListingServer, context.Context, *structpb.Struct) (*structpb.Struct, error),
	name string,
) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	fullMethod := "/" + listingServiceName + "/" + name
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return method(srv.(ListingServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return method(srv.(ListingServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}
