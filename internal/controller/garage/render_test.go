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

package garage_controller

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"k8s.io/apimachinery/pkg/types"

	"github.com/deuxfleurs-fr/garage-operator/api/v1alpha1"
)

func TestBuildDeploymentMountsMetaAndDataClaims(t *testing.T) {
	garage := minimalGarage("my-garage", "default", false)
	garage.Spec.Storage.Data = append(garage.Spec.Storage.Data, v1alpha1.PvcSpec{Size: "20Gi"})

	deployment := buildDeployment(garage, "dxflrs/garage:v1.0.1", types.NamespacedName{Name: "admin-secret"}, types.NamespacedName{Name: "rpc-secret"})

	container := deployment.Spec.Template.Spec.Containers[0]
	mountPaths := map[string]bool{}
	for _, m := range container.VolumeMounts {
		mountPaths[m.MountPath] = true
	}
	assert.True(t, mountPaths["/mnt/meta"])
	assert.True(t, mountPaths["/mnt/data-0"])
	assert.True(t, mountPaths["/mnt/data-1"])
	assert.True(t, mountPaths["/etc/garage.toml"])
	assert.Equal(t, int32(1), *deployment.Spec.Replicas)

	var sawAdmin, sawRPC bool
	for _, e := range container.Env {
		if e.Name == "GARAGE_ADMIN_TOKEN" {
			sawAdmin = true
			assert.Equal(t, "admin-secret", e.ValueFrom.SecretKeyRef.Name)
		}
		if e.Name == "GARAGE_RPC_SECRET" {
			sawRPC = true
			assert.Equal(t, "rpc-secret", e.ValueFrom.SecretKeyRef.Name)
		}
	}
	assert.True(t, sawAdmin)
	assert.True(t, sawRPC)
}

func TestBuildServiceExposesFourNamedPorts(t *testing.T) {
	garage := minimalGarage("my-garage", "default", false)
	service := buildService(garage)

	names := map[string]int32{}
	for _, p := range service.Spec.Ports {
		names[p.Name] = p.Port
	}
	assert.Equal(t, int32(3903), names["admin"])
	assert.Equal(t, int32(3901), names["rpc"])
	assert.Equal(t, int32(3900), names["s3-api"])
	assert.Equal(t, int32(3902), names["s3-web"])
}

func TestBuildConfigMapReferencesResolvedMountPaths(t *testing.T) {
	garage := minimalGarage("my-garage", "default", false)
	configMap := buildConfigMap(garage)

	body := configMap.Data["garage.toml"]
	assert.True(t, strings.Contains(body, `metadata_dir = "/mnt/meta"`))
	assert.True(t, strings.Contains(body, `/mnt/data-0`))
	assert.True(t, strings.Contains(body, `replication_mode = "none"`))
}

func TestMetaClaimNameUsesExistingClaimWhenSet(t *testing.T) {
	garage := minimalGarage("my-garage", "default", false)
	garage.Spec.Storage.Meta = v1alpha1.PvcSpec{ExistingClaim: "pre-provisioned"}

	assert.Equal(t, "pre-provisioned", metaClaimName(garage))
}

func TestBuildPVCRejectsUnparseableSize(t *testing.T) {
	garage := minimalGarage("my-garage", "default", false)
	_, err := buildPVC(garage, "bad", v1alpha1.PvcSpec{Size: "not-a-size"})
	assert.Error(t, err)
}
