/*
Copyright 2023.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package bucket_controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/tools/record"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"
	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"

	"github.com/deuxfleurs-fr/garage-operator/api/v1alpha1"
	"github.com/deuxfleurs-fr/garage-operator/internal/garageadmin"
	"github.com/deuxfleurs-fr/garage-operator/internal/helpers"
)

func newScheme() *runtime.Scheme {
	scheme := runtime.NewScheme()
	_ = v1alpha1.AddToScheme(scheme)
	return scheme
}

func readyGarage(name, namespace string) *v1alpha1.Garage {
	return &v1alpha1.Garage{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: namespace},
		Status:     v1alpha1.GarageStatus{State: v1alpha1.StateReady},
	}
}

func newBucketReconciler(c client.Client, adminClientFor helpers.AdminClientFactory) *BucketReconciler {
	return &BucketReconciler{
		Client:           c,
		Scheme:           newScheme(),
		AdminClientFor:   adminClientFor,
		ControllerHelper: helpers.NewControllerHelper(),
		Recorder:         record.NewFakeRecorder(10),
	}
}

func TestReconcileWaitsWhenGarageNotReady(t *testing.T) {
	log.SetLogger(zap.New(zap.UseDevMode(true)))

	bucketResource := &v1alpha1.Bucket{
		ObjectMeta: metav1.ObjectMeta{Name: "my-bucket", Namespace: "default"},
		Spec:       v1alpha1.BucketSpec{GarageRef: v1alpha1.NamespacedRef{Name: "missing-garage"}},
	}
	fakeClient := fake.NewClientBuilder().
		WithScheme(newScheme()).
		WithObjects(bucketResource).
		WithStatusSubresource(bucketResource).
		Build()

	called := false
	r := newBucketReconciler(fakeClient, func(ctx context.Context, c client.Client, garage *v1alpha1.Garage) (*garageadmin.Client, error) {
		called = true
		return nil, nil
	})

	result, err := r.Reconcile(context.Background(), ctrl.Request{NamespacedName: types.NamespacedName{Name: "my-bucket", Namespace: "default"}})
	assert.NoError(t, err)
	assert.False(t, called, "admin client must not be built while the dependency is not ready")
	assert.Greater(t, result.RequeueAfter.Seconds(), float64(0))

	updated := &v1alpha1.Bucket{}
	assert.NoError(t, fakeClient.Get(context.Background(), types.NamespacedName{Name: "my-bucket", Namespace: "default"}, updated))
	assert.Equal(t, v1alpha1.StateCreating, updated.Status.State)
}

func TestReconcileCreatesBucketAndAppliesQuotas(t *testing.T) {
	log.SetLogger(zap.New(zap.UseDevMode(true)))

	var gotQuotaUpdate bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/bucket":
			_ = json.NewEncoder(w).Encode(map[string]string{"id": "bucket-id-1"})
		case r.Method == http.MethodGet && r.URL.Path == "/bucket":
			_ = json.NewEncoder(w).Encode(garageadmin.Bucket{ID: "bucket-id-1"})
		case r.Method == http.MethodPut && r.URL.Path == "/bucket":
			gotQuotaUpdate = true
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	garageResource := readyGarage("garage", "default")
	bucketResource := &v1alpha1.Bucket{
		ObjectMeta: metav1.ObjectMeta{Name: "my-bucket", Namespace: "default"},
		Spec: v1alpha1.BucketSpec{
			GarageRef: v1alpha1.NamespacedRef{Name: "garage"},
			Quotas:    v1alpha1.BucketQuotas{MaxSize: "5Mi"},
		},
	}
	fakeClient := fake.NewClientBuilder().
		WithScheme(newScheme()).
		WithObjects(garageResource, bucketResource).
		WithStatusSubresource(bucketResource).
		Build()

	r := newBucketReconciler(fakeClient, func(ctx context.Context, c client.Client, garage *v1alpha1.Garage) (*garageadmin.Client, error) {
		return garageadmin.NewClient(server.URL, "test-token"), nil
	})

	_, err := r.Reconcile(context.Background(), ctrl.Request{NamespacedName: types.NamespacedName{Name: "my-bucket", Namespace: "default"}})
	assert.NoError(t, err)
	assert.True(t, gotQuotaUpdate)

	updated := &v1alpha1.Bucket{}
	assert.NoError(t, fakeClient.Get(context.Background(), types.NamespacedName{Name: "my-bucket", Namespace: "default"}, updated))
	assert.Equal(t, "bucket-id-1", updated.Status.Id)
	assert.Equal(t, v1alpha1.StateReady, updated.Status.State)
}
