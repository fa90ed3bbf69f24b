package handler

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/cetus-shop/cetus-catalog-service/internal/auth"
	"github.com/cetus-shop/cetus-catalog-service/internal/httpx"
	"github.com/cetus-shop/cetus-catalog-service/internal/model"
	"github.com/cetus-shop/cetus-catalog-service/internal/product"
	"github.com/cetus-shop/cetus-catalog-service/pkg/logger"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const SelectorServiceName = "cetus.catalog.v1.VariantSelector"

// SelectorServer exposes option selection over gRPC. Messages are
// google.protobuf.Struct so clients need no generated stubs.
type SelectorServer interface {
	GetSelector(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ResolveVariant(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

var SelectorServiceDesc = grpc.ServiceDesc{
	ServiceName: SelectorServiceName,
	HandlerType: (*SelectorServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetSelector", Handler: unaryHandler("GetSelector", SelectorServer.GetSelector)},
		{MethodName: "ResolveVariant", Handler: unaryHandler("ResolveVariant", SelectorServer.ResolveVariant)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "cetus/catalog/v1/selector.proto",
}

func RegisterSelectorServer(s grpc.ServiceRegistrar, srv SelectorServer) {
	s.RegisterService(&SelectorServiceDesc, srv)
}

func unaryHandler(method string, call func(SelectorServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(SelectorServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + SelectorServiceName + "/" + method}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(SelectorServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

type SelectorHandler struct {
	uc     product.UseCase
	logger logger.ZapLogger
}

var _ SelectorServer = (*SelectorHandler)(nil)

func NewSelectorHandler(uc product.UseCase, log logger.ZapLogger) *SelectorHandler {
	return &SelectorHandler{uc: uc, logger: log}
}

func (h *SelectorHandler) GetSelector(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	merchantID, err := requireMerchant(ctx)
	if err != nil {
		return nil, err
	}
	productID := stringField(req, "product_id")
	if productID == "" {
		return nil, status.Error(codes.InvalidArgument, "product_id is required")
	}
	if !httpx.ValidID(productID) {
		return nil, status.Error(codes.NotFound, model.ErrProductNotFound.Error())
	}

	sel, err := h.uc.GetSelector(ctx, merchantID, productID, stringField(req, "variant_id"))
	if err != nil {
		return nil, h.toStatus(err)
	}
	return toStruct(sel)
}

func (h *SelectorHandler) ResolveVariant(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	merchantID, err := requireMerchant(ctx)
	if err != nil {
		return nil, err
	}
	productID := stringField(req, "product_id")
	valueID := stringField(req, "value_id")
	if productID == "" || valueID == "" {
		return nil, status.Error(codes.InvalidArgument, "product_id and value_id are required")
	}
	if !httpx.ValidID(productID) {
		return nil, status.Error(codes.NotFound, model.ErrProductNotFound.Error())
	}

	res, err := h.uc.ResolveVariant(ctx, merchantID, productID, stringField(req, "variant_id"), valueID)
	if err != nil {
		return nil, h.toStatus(err)
	}
	return toStruct(res)
}

func requireMerchant(ctx context.Context) (string, error) {
	merchantID := auth.GetMerchantID(ctx)
	if merchantID == "" {
		return "", status.Error(codes.Unauthenticated, "missing merchant")
	}
	if !httpx.ValidID(merchantID) {
		return "", status.Error(codes.InvalidArgument, model.ErrInvalidMerchant.Error())
	}
	return merchantID, nil
}

func (h *SelectorHandler) toStatus(err error) error {
	switch {
	case errors.Is(err, model.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, model.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, model.ErrConflict):
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		h.logger.Error("selector rpc failed", zap.Error(err))
		return status.Error(codes.Internal, "internal error")
	}
}

func stringField(s *structpb.Struct, key string) string {
	if s == nil {
		return ""
	}
	if v, ok := s.GetFields()[key]; ok {
		return v.GetStringValue()
	}
	return ""
}

// toStruct goes through JSON so the response keeps the HTTP field names.
func toStruct(v interface{}) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}
