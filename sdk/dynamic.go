package sdk

import (
	"github.com/yaroslav/haloclient/models"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

// UnstructuredList is the list shape returned for dynamic resources.
type UnstructuredList = models.ListResult[unstructured.Unstructured]

// DynamicClient operates on any extension resource without a Go type.
// Objects must carry apiVersion and kind.
type DynamicClient = ResourceClient[unstructured.Unstructured, UnstructuredList]

// Dynamic returns an untyped operation set for gvr. An empty group addresses
// the core /api prefix.
func (c *Client) Dynamic(gvr schema.GroupVersionResource) *DynamicClient {
	return NewResourceClient[unstructured.Unstructured, UnstructuredList](c, ResourceFor(gvr))
}
