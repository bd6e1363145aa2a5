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

package accesskey_controller

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"
	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"

	"github.com/deuxfleurs-fr/garage-operator/api/v1alpha1"
	"github.com/deuxfleurs-fr/garage-operator/internal/garageadmin"
)

func TestHandleDeletionRevokesPermissionsAndDeletesRemoteKey(t *testing.T) {
	log.SetLogger(zap.New(zap.UseDevMode(true)))

	var denied bool
	var deletedID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/bucket/deny":
			denied = true
			w.WriteHeader(http.StatusOK)
		case r.Method == http.MethodDelete && r.URL.Path == "/key":
			deletedID = r.URL.Query().Get("id")
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	accessKeyResource := &v1alpha1.AccessKey{
		ObjectMeta: metav1.ObjectMeta{
			Name:              "my-key",
			Namespace:         "default",
			DeletionTimestamp: &metav1.Time{Time: time.Now()},
			Finalizers:        []string{accessKeyFinalizer},
		},
		Spec: v1alpha1.AccessKeySpec{
			GarageRef: v1alpha1.NamespacedRef{Name: "garage"},
			BucketRef: v1alpha1.NamespacedRef{Name: "my-bucket"},
		},
		Status: v1alpha1.AccessKeyStatus{Id: "key-1"},
	}
	fakeClient := fake.NewClientBuilder().
		WithScheme(newScheme()).
		WithObjects(readyGarage("garage", "default"), readyBucket("my-bucket", "default", "bucket-id-1"), accessKeyResource).
		WithStatusSubresource(accessKeyResource).
		Build()

	r := newAccessKeyReconciler(fakeClient, func(ctx context.Context, c client.Client, garage *v1alpha1.Garage) (*garageadmin.Client, error) {
		return garageadmin.NewClient(server.URL, "test-token"), nil
	})

	req := ctrl.Request{NamespacedName: types.NamespacedName{Name: "my-key", Namespace: "default"}}
	_, err := r.Reconcile(context.Background(), req)
	assert.NoError(t, err)
	assert.True(t, denied)
	assert.Equal(t, "key-1", deletedID)

	remaining := &v1alpha1.AccessKey{}
	err = fakeClient.Get(context.Background(), req.NamespacedName, remaining)
	assert.Error(t, err)
}

func TestHandleDeletionSkipsRemoteCallWhenIdNeverSet(t *testing.T) {
	log.SetLogger(zap.New(zap.UseDevMode(true)))

	accessKeyResource := &v1alpha1.AccessKey{
		ObjectMeta: metav1.ObjectMeta{
			Name:              "never-created",
			Namespace:         "default",
			DeletionTimestamp: &metav1.Time{Time: time.Now()},
			Finalizers:        []string{accessKeyFinalizer},
		},
		Spec: v1alpha1.AccessKeySpec{
			GarageRef: v1alpha1.NamespacedRef{Name: "garage"},
			BucketRef: v1alpha1.NamespacedRef{Name: "my-bucket"},
		},
	}
	fakeClient := fake.NewClientBuilder().
		WithScheme(newScheme()).
		WithObjects(readyGarage("garage", "default"), readyBucket("my-bucket", "default", "bucket-id-1"), accessKeyResource).
		WithStatusSubresource(accessKeyResource).
		Build()

	r := newAccessKeyReconciler(fakeClient, func(ctx context.Context, c client.Client, garage *v1alpha1.Garage) (*garageadmin.Client, error) {
		t.Fatal("admin client must not be requested when status.id was never set")
		return nil, nil
	})

	req := ctrl.Request{NamespacedName: types.NamespacedName{Name: "never-created", Namespace: "default"}}
	_, err := r.Reconcile(context.Background(), req)
	assert.NoError(t, err)
}
